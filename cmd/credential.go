package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"referralflow/internal/config"
	"referralflow/pkg/credentials"
	"referralflow/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	storeKeyring  = "keyring"
	storeDatabase = "database"
)

// credentialWriter opens the secret store selected by name. The returned
// function releases it.
func credentialWriter(ctx context.Context, cfg *config.Config, store string) (credentials.Writer, func()) {
	switch store {
	case storeKeyring:
		if cfg.Credentials.KeyringService == "" {
			logger.Fatal(ctx, "credentials.keyringService is not configured")
		}

		return credentials.NewKeyring(cfg.Credentials.KeyringService), func() {}
	case storeDatabase:
		box, err := credentials.NewBox(cfg.Credentials.EncryptionKey)
		if err != nil {
			logger.Fatal(ctx, "could not create secret box", zap.Error(err))
		}
		strg, closeStrg := getPostgres(ctx, cfg)

		return credentials.NewStored(strg, box), closeStrg
	default:
		logger.Fatal(ctx, "unknown credential store", zap.String("store", store))

		return nil, nil
	}
}

// credentialCommand constructs the 'credential' subcommand that manages the
// secrets resolved at run time (extraction API token, relay passwords).
func credentialCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manages stored secrets",
	}
	cmd.PersistentFlags().String("store", storeDatabase, "Secret store: database or keyring")

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Stores a secret read from standard input",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			account, _ := cmd.Flags().GetString("account")
			store, _ := cmd.Flags().GetString("store")

			secret, err := bufio.NewReader(os.Stdin).ReadString('\n')
			secret = strings.TrimSpace(secret)
			if secret == "" {
				logger.Fatal(ctx, "no secret on standard input", zap.Error(err))
			}

			w, release := credentialWriter(ctx, cfg, store)
			defer release()
			if err = w.SetSecret(ctx, account, secret); err != nil {
				logger.Fatal(ctx, "could not store secret", zap.Error(err))
			}
			logger.Info(ctx, "secret stored", zap.String("account", account), zap.String("store", store))
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Deletes a stored secret",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			account, _ := cmd.Flags().GetString("account")
			store, _ := cmd.Flags().GetString("store")

			w, release := credentialWriter(ctx, cfg, store)
			defer release()
			if err := w.DeleteSecret(ctx, account); err != nil {
				logger.Fatal(ctx, "could not delete secret", zap.Error(err))
			}
			logger.Info(ctx, "secret deleted", zap.String("account", account), zap.String("store", store))
		},
	}

	rekeyCmd := &cobra.Command{
		Use:   "rekey",
		Short: "Re-seals every database secret with a new encryption key read from standard input",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			newKey, err := bufio.NewReader(os.Stdin).ReadString('\n')
			newKey = strings.TrimSpace(newKey)
			if newKey == "" {
				logger.Fatal(ctx, "no key on standard input", zap.Error(err))
			}

			from, err := credentials.NewBox(cfg.Credentials.EncryptionKey)
			if err != nil {
				logger.Fatal(ctx, "could not create secret box for the current key", zap.Error(err))
			}
			to, err := credentials.NewBox(newKey)
			if err != nil {
				logger.Fatal(ctx, "could not create secret box for the new key", zap.Error(err))
			}

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			n, err := credentials.Rekey(ctx, strg, from, to)
			if err != nil {
				logger.Fatal(ctx, "could not rekey secrets", zap.Error(err))
			}
			logger.Info(ctx, "secrets resealed; update credentials.encryptionKey before the next start", zap.Int("count", n))
		},
	}

	for _, c := range []*cobra.Command{setCmd, deleteCmd} {
		c.Flags().String("account", "", "Account name, e.g. huggingface or smtp:user@smtp.example.com")
		_ = c.MarkFlagRequired("account")
	}

	cmd.AddCommand(setCmd, deleteCmd, rekeyCmd)

	return cmd
}
