// Command initvault creates a new, empty vault file at a chosen path (or
// the default $HOME/.passwords), bootstrapping its outer salt and key
// generation key under a freshly chosen master password.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/arelius-labs/passvault/internal/config"
	"github.com/arelius-labs/passvault/internal/logging"
	"github.com/arelius-labs/passvault/internal/vaultservice"
)

func main() {
	var vaultPath string
	flag.StringVar(&vaultPath, "vault", "", "vault file path (default $HOME/.passwords)")
	flag.Parse()

	if vaultPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("determine home directory: %v", err)
		}
		vaultPath = filepath.Join(home, config.DefaultVaultFilename)
	}

	if _, err := os.Stat(vaultPath); err == nil {
		log.Fatalf("refusing to overwrite existing vault file at %s", vaultPath)
	}

	svc, err := vaultservice.New(vaultservice.Options{
		VaultPath:  vaultPath,
		Iterations: config.DefaultIterations,
		Logger:     logging.NewDiscard(),
	})
	if err != nil {
		log.Fatalf("open vault: %v", err)
	}
	defer svc.Close()

	pw, confirm, err := promptNewMasterPassword()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer zeroBytes(pw)
	defer zeroBytes(confirm)

	if string(pw) != string(confirm) {
		log.Fatalf("passwords do not match")
	}

	if err := svc.Unlock(string(pw)); err != nil {
		log.Fatalf("initialize vault: %v", err)
	}
	if err := svc.Save(); err != nil {
		log.Fatalf("save vault: %v", err)
	}

	fmt.Printf("vault initialized at %s\n", vaultPath)
}

func promptNewMasterPassword() (pw, confirm []byte, err error) {
	fmt.Fprint(os.Stderr, "New master password: ")
	pw, err = term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("read master password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm master password: ")
	confirm, err = term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("read confirmation password: %w", err)
	}
	return pw, confirm, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
