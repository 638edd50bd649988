package main

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"
)

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func promptPasswordWithConfirmation(prompt, confirmPrompt string) ([]byte, error) {
	pw, err := promptPassword(prompt)
	if err != nil {
		return nil, err
	}
	confirm, err := promptPassword(confirmPrompt)
	if err != nil {
		zeroBytes(pw)
		return nil, err
	}
	defer zeroBytes(confirm)
	if !bytes.Equal(pw, confirm) {
		zeroBytes(pw)
		return nil, fmt.Errorf("passwords do not match")
	}
	return pw, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
