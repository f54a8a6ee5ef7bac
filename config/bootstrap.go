package config

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
)

// SeedAgent upserts the configured agent account so it can log in through the
// regular admin login.
func SeedAgent(ctx context.Context, cfg *Config, auth *services.AuthService, logger logrus.FieldLogger) error {
	if !cfg.AgentConfigured() {
		logger.Debug("No agent account configured")
		return nil
	}

	agent, err := auth.SeedAccount(ctx, cfg.Agent.Name, cfg.Agent.Email, cfg.Agent.Password, models.RoleAgent)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"account_id": agent.ID.Hex(),
		"email":      agent.Email,
	}).Info("Agent account ready")
	return nil
}
