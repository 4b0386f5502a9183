package config

import (
	"context"
	"fmt"

	"github.com/tokamak-network/pages-deployer/internal/logger"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

const (
	vaultKeySecret      = "secret"
	vaultKeyGitHubToken = "github_token"
)

// loadVaultSecrets fills unset secrets from a KV v2 document. Only the keys
// that are still empty are taken from Vault.
func (c *Config) loadVaultSecrets(ctx context.Context) error {
	if c.Vault.Token == "" {
		return fmt.Errorf("VAULT_TOKEN is required when VAULT_ADDR is set")
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = c.Vault.Address
	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(c.Vault.Token)

	secret, err := client.Logical().ReadWithContext(ctx, c.Vault.SecretPath)
	if err != nil {
		return fmt.Errorf("failed to read secret at %s: %w", c.Vault.SecretPath, err)
	}
	if secret == nil {
		return fmt.Errorf("secret not found at path: %s", c.Vault.SecretPath)
	}

	// KV v2 nests the document under "data".
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected secret format at path: %s", c.Vault.SecretPath)
	}

	c.applyVaultData(data)
	logger.Info("Loaded secrets from vault", zap.String("path", c.Vault.SecretPath))
	return nil
}

func (c *Config) applyVaultData(data map[string]interface{}) {
	if c.Secret == "" {
		if v, ok := data[vaultKeySecret].(string); ok {
			c.Secret = v
		}
	}
	if c.GitHub.Token == "" {
		if v, ok := data[vaultKeyGitHubToken].(string); ok {
			c.GitHub.Token = v
		}
	}
}
