//go:build windows

package death

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/dbsandbox/internal/conventions"
	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/utils/wait"
)

// windowsProbe relies on the server holding the system tablespace open in
// exclusive mode: the file can be opened for append only when it is gone.
type windowsProbe struct {
	sleep  wait.SleepFunc
	logger log.Logger
}

func newPlatformProbe(cfg ProbeConfig) Probe {
	return windowsProbe{sleep: cfg.Sleep, logger: cfg.Logger}
}

func (p windowsProbe) WaitUntilDead(ctx context.Context, dataDir string) error {
	ibdataPath := filepath.Join(dataDir, conventions.IBDataFile)
	for {
		f, err := os.OpenFile(ibdataPath, os.O_APPEND|os.O_WRONLY, 0)
		if err == nil {
			f.Close()
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		p.logger.Debugf("Data file %s still in use: %v", ibdataPath, err)
		if err := p.sleep(ctx, AppendOpenPollInterval); err != nil {
			return fmt.Errorf("waiting for data file release: %w", err)
		}
	}
}
