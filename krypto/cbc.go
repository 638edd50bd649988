package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

const blockSize = aes.BlockSize // 16

// AddPKCS7Padding appends PKCS7 padding to data. It always adds at least one
// byte of padding, even when data is already block-aligned, matching the
// reference implementation's padding routine.
func AddPKCS7Padding(data []byte) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// RemovePKCS7Padding strips PKCS7 padding from data without validating the
// pad bytes, matching the reference implementation: it trusts the last byte
// as the pad length and slices it off.
func RemovePKCS7Padding(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	padLen := int(data[len(data)-1])
	if padLen > len(data) {
		return data
	}
	return data[:len(data)-padLen]
}

// EncryptCBC PKCS7-pads plaintext and encrypts it with AES-CBC under key/iv.
func EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	padded := AddPKCS7Padding(plaintext)
	return EncryptCBCUnpadded(key, iv, padded)
}

// DecryptCBC decrypts ciphertext with AES-CBC under key/iv and strips PKCS7
// padding from the result.
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	plain, err := DecryptCBCUnpadded(key, iv, ciphertext)
	if err != nil {
		return nil, err
	}
	return RemovePKCS7Padding(plain), nil
}

// EncryptCBCUnpadded encrypts plaintext with AES-CBC under key/iv without
// adding any padding. len(plaintext) must already be a multiple of the AES
// block size.
func EncryptCBCUnpadded(key, iv, plaintext []byte) ([]byte, error) {
	if len(plaintext)%blockSize != 0 {
		return nil, fmt.Errorf("krypto: plaintext length %d is not a multiple of the block size", len(plaintext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("krypto: new cipher: %w", err)
	}
	if len(iv) != blockSize {
		return nil, fmt.Errorf("krypto: iv must be %d bytes", blockSize)
	}
	ciphertext := make([]byte, len(plaintext))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, plaintext)
	return ciphertext, nil
}

// DecryptCBCUnpadded decrypts ciphertext with AES-CBC under key/iv without
// stripping any padding. len(ciphertext) must be a multiple of the AES
// block size.
func DecryptCBCUnpadded(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("krypto: ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("krypto: new cipher: %w", err)
	}
	if len(iv) != blockSize {
		return nil, fmt.Errorf("krypto: iv must be %d bytes", blockSize)
	}
	plaintext := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext)
	return plaintext, nil
}
