package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/arelius-labs/passvault/internal/logging"
	"github.com/arelius-labs/passvault/internal/vaultservice"
)

func buildService() (*vaultservice.Service, error) {
	logger := logging.New(conf.Verbose, logging.AuditLogPath(conf.AuditPath))
	return vaultservice.New(vaultservice.Options{
		VaultPath:  conf.VaultPath,
		AuditPath:  conf.AuditPath,
		Iterations: conf.Iterations,
		Logger:     logger,
	})
}

// withUnlockedVault opens the configured vault, prompts for the master
// password, unlocks it, runs fn, saves when save is true, then locks and
// closes the vault regardless of fn's outcome.
func withUnlockedVault(save bool, fn func(svc *vaultservice.Service) error) error {
	svc, err := buildService()
	if err != nil {
		return err
	}
	defer svc.Close()

	pw, err := promptPassword("Master password: ")
	if err != nil {
		return fmt.Errorf("read master password: %w", err)
	}
	defer zeroBytes(pw)

	if err := svc.Unlock(string(pw)); err != nil {
		return err
	}
	defer svc.Lock()

	if err := fn(svc); err != nil {
		return err
	}
	if save {
		return svc.Save()
	}
	return nil
}

func newUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Verify the master password unlocks the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUnlockedVault(false, func(svc *vaultservice.Service) error {
				domains, err := svc.Domains()
				if err != nil {
					return err
				}
				fmt.Printf("vault unlocked: %d domain(s) stored\n", len(domains))
				return nil
			})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUnlockedVault(false, func(svc *vaultservice.Service) error {
				domains, err := svc.Domains()
				if err != nil {
					return err
				}
				sort.Strings(domains)
				for _, d := range domains {
					fmt.Println(d)
				}
				return nil
			})
		},
	}
}

func newAddCmd() *cobra.Command {
	var (
		complexity int
		length     int
		fixed      bool
		username   string
		url        string
		notes      string
	)
	cmd := &cobra.Command{
		Use:   "add <domain>",
		Short: "Add (or overwrite settings for) a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			return withUnlockedVault(true, func(svc *vaultservice.Service) error {
				rec, err := svc.GetOrCreate(domain)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("length") {
					if err := rec.SetLength(length); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("complexity") {
					if err := rec.SetComplexity(complexity); err != nil {
						return err
					}
				}
				rec.Username = username
				rec.URL = url
				rec.Notes = notes
				if fixed {
					pw, err := promptPasswordWithConfirmation("Fixed password: ", "Confirm fixed password: ")
					if err != nil {
						return err
					}
					defer zeroBytes(pw)
					rec.FixedPassword = string(pw)
				}
				return svc.Put(rec)
			})
		},
	}
	cmd.Flags().IntVar(&complexity, "complexity", 7, "character class combination, 1-8")
	cmd.Flags().IntVar(&length, "length", 16, "generated password length")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "prompt for an explicit fixed password instead of a generated one")
	cmd.Flags().StringVar(&username, "username", "", "username for this domain")
	cmd.Flags().StringVar(&url, "url", "", "URL for this domain")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

func newRevealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <domain>",
		Short: "Print the password for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			return withUnlockedVault(false, func(svc *vaultservice.Service) error {
				domain = resolveDomain(svc, domain)
				password, err := svc.Reveal(domain)
				if err != nil {
					return err
				}
				fmt.Println(password)
				return nil
			})
		},
	}
}

func newEditCmd() *cobra.Command {
	var (
		complexity int
		length     int
		username   string
		url        string
		notes      string
		clearFixed bool
	)
	cmd := &cobra.Command{
		Use:   "edit <domain>",
		Short: "Change settings for an existing domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			return withUnlockedVault(true, func(svc *vaultservice.Service) error {
				domain = resolveDomain(svc, domain)
				rec, ok, err := svc.Get(domain)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no record for domain %q", domain)
				}
				if cmd.Flags().Changed("length") {
					if err := rec.SetLength(length); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("complexity") {
					if err := rec.SetComplexity(complexity); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("username") {
					rec.Username = username
				}
				if cmd.Flags().Changed("url") {
					rec.URL = url
				}
				if cmd.Flags().Changed("notes") {
					rec.Notes = notes
				}
				if clearFixed {
					rec.ClearFixedPassword()
				}
				return svc.Put(rec)
			})
		},
	}
	cmd.Flags().IntVar(&complexity, "complexity", 0, "character class combination, 1-8")
	cmd.Flags().IntVar(&length, "length", 0, "generated password length")
	cmd.Flags().StringVar(&username, "username", "", "username for this domain")
	cmd.Flags().StringVar(&url, "url", "", "URL for this domain")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&clearFixed, "clear-fixed", false, "remove a fixed password, reverting to a generated one")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <domain>",
		Aliases: []string{"delete"},
		Short:   "Remove a stored domain",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			return withUnlockedVault(true, func(svc *vaultservice.Service) error {
				return svc.Delete(resolveDomain(svc, domain))
			})
		},
	}
}

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the vault's master password",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService()
			if err != nil {
				return err
			}
			defer svc.Close()

			pw, err := promptPassword("Current master password: ")
			if err != nil {
				return fmt.Errorf("read master password: %w", err)
			}
			if err := svc.Unlock(string(pw)); err != nil {
				zeroBytes(pw)
				return err
			}
			zeroBytes(pw)
			defer svc.Lock()

			newPw, err := promptPasswordWithConfirmation("New master password: ", "Confirm new master password: ")
			if err != nil {
				return err
			}
			defer zeroBytes(newPw)

			if err := svc.ChangeMasterPassword(string(newPw)); err != nil {
				return err
			}
			fmt.Println("master password changed")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	var unlock bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show vault file statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			// File size comes straight off the file descriptor, so it's
			// reported without ever asking for the master password. The
			// record count needs the records blob decrypted, so it only
			// appears when --unlock opts into that prompt; otherwise it's
			// reported as "locked", matching a vault with no active session.
			svc, err := buildService()
			if err != nil {
				return err
			}
			defer svc.Close()

			size, err := svc.Stat()
			if err != nil {
				return err
			}
			fmt.Printf("vault file size: %s\n", humanize.Bytes(uint64(size)))

			if !unlock {
				fmt.Println("domains stored:  locked")
				return nil
			}

			pw, err := promptPassword("Master password: ")
			if err != nil {
				return fmt.Errorf("read master password: %w", err)
			}
			defer zeroBytes(pw)
			if err := svc.Unlock(string(pw)); err != nil {
				return err
			}
			defer svc.Lock()

			domains, err := svc.Domains()
			if err != nil {
				return err
			}
			fmt.Printf("domains stored:  %d\n", len(domains))
			return nil
		},
	}
	cmd.Flags().BoolVar(&unlock, "unlock", false, "prompt for the master password to also report the record count")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent vault operations from the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService()
			if err != nil {
				return err
			}
			defer svc.Close()

			entries, err := svc.History(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no audit entries recorded yet")
				return nil
			}
			for _, e := range entries {
				status := "ok"
				if !e.Succeeded {
					status = "failed"
				}
				fmt.Printf("%s  %-14s %-24s %s\n", e.OccurredAt.Format("2006-01-02T15:04:05"), e.Operation, e.Domain, status)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to show")
	return cmd
}

// resolveDomain swaps in the suggested prefix match when domain isn't
// stored exactly, so "exa" can resolve to "example.com".
func resolveDomain(svc *vaultservice.Service, domain string) string {
	suggestion, ok, err := svc.SuggestDomain(domain)
	if err == nil && ok {
		return suggestion
	}
	return domain
}
