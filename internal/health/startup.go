// SPDX-License-Identifier: MIT

package health

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vt2g/internal/config"
	"github.com/ManuGH/vt2g/internal/log"
)

// PerformStartupChecks validates the environment before the daemon starts
// serving: a misconfigured data directory or listen address should fail fast
// instead of surfacing on the first download.
func PerformStartupChecks(cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := checkDataDir(logger, cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}
	if err := checkListenAddr("API", cfg.ListenAddr); err != nil {
		return err
	}
	if cfg.MetricsEnabled {
		if err := checkListenAddr("metrics", cfg.MetricsAddr); err != nil {
			return err
		}
	}
	if err := config.ValidateBaseURL(cfg.TileBase); err != nil {
		return fmt.Errorf("tile base check failed: %w", err)
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0o750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", path, err)
			}
			logger.Info().Str(log.FieldPath, path).Msg("created data directory")
			info, err = os.Stat(path)
			if err != nil {
				return err
			}
		} else {
			return err
		}
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	probe := filepath.Join(path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	_ = os.Remove(probe)

	logger.Info().Str(log.FieldPath, path).Msg("data directory is writable")
	return nil
}

func checkListenAddr(name, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s listen address is empty", name)
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid %s listen address %q: %w", name, addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid %s listen port %q in %q", name, port, addr)
	}
	return nil
}
