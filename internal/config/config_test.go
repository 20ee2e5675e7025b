package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/active-defence/internal/config"
	"github.com/KirkDiggler/active-defence/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigTestSuite) writeFile(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigTestSuite) TestDefaultIsValid() {
	cfg := config.Default()
	s.NoError(cfg.Validate())
	s.Equal("Defence Roll", cfg.Defence.ChatName)
	s.Equal(time.Hour, cfg.Defence.HistoryTTL)
	s.Equal(50051, cfg.GRPC.Port)
	s.Empty(cfg.Redis.URL)
}

func (s *ConfigTestSuite) TestLoadWithoutFile() {
	cfg, err := config.Load("")
	s.Require().NoError(err)
	s.Equal(config.Default(), cfg)

	cfg, err = config.Load(filepath.Join(s.dir, "missing.yaml"))
	s.Require().NoError(err)
	s.Equal(config.Default(), cfg)
}

func (s *ConfigTestSuite) TestLoadYAML() {
	path := s.writeFile("config.yaml", `
log_level: debug
grpc:
  port: 6000
redis:
  url: redis://localhost:6379/0
defence:
  chat_name: Parry
  history_ttl: 30m
  publish_events: true
`)

	cfg, err := config.Load(path)
	s.Require().NoError(err)
	s.Equal(6000, cfg.GRPC.Port)
	s.Equal(30*time.Second, cfg.GRPC.ShutdownTimeout)
	s.Equal("redis://localhost:6379/0", cfg.Redis.URL)
	s.Equal("Parry", cfg.Defence.ChatName)
	s.Equal(30*time.Minute, cfg.Defence.HistoryTTL)
	s.True(cfg.Defence.PublishEvents)
	s.Equal(slog.LevelDebug, cfg.SlogLevel())
}

func (s *ConfigTestSuite) TestEnvOverridesYAML() {
	path := s.writeFile("config.yaml", "defence:\n  chat_name: Parry\n")
	s.T().Setenv("DEFENCE_CHAT_NAME", "Dodge")
	s.T().Setenv("GRPC_PORT", "7000")
	s.T().Setenv("DICE_SESSION_TTL", "5m")

	cfg, err := config.Load(path)
	s.Require().NoError(err)
	s.Equal("Dodge", cfg.Defence.ChatName)
	s.Equal(7000, cfg.GRPC.Port)
	s.Equal(5*time.Minute, cfg.Dice.SessionTTL)
}

func (s *ConfigTestSuite) TestLoadRejectsInvalidYAML() {
	path := s.writeFile("config.yaml", "grpc: [")

	_, err := config.Load(path)
	s.Error(err)
}

func (s *ConfigTestSuite) TestValidate() {
	cfg := config.Default()
	cfg.GRPC.Port = 0
	cfg.Defence.ChatName = " "
	cfg.Defence.HistoryTTL = 0
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "grpc.port")
	s.Contains(err.Error(), "defence.chat_name")
	s.Contains(err.Error(), "defence.history_ttl")
	s.Contains(err.Error(), "log_level")
}

func (s *ConfigTestSuite) TestLoadDotEnv() {
	path := s.writeFile(".env", "DEFENCE_CHAT_NAME=Block\n")
	s.T().Setenv("DEFENCE_CHAT_NAME", "")
	s.Require().NoError(os.Unsetenv("DEFENCE_CHAT_NAME"))

	s.Require().NoError(config.LoadDotEnv(filepath.Join(s.dir, "missing.env"), path))

	cfg, err := config.Load("")
	s.Require().NoError(err)
	s.Equal("Block", cfg.Defence.ChatName)
}
