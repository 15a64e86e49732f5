// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kusari-oss/piper/internal/core/logging"
	"github.com/kusari-oss/piper/internal/core/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Installer runs install sets locally. Each tag's commands run in order and
// stop at the first failure; different tags run concurrently and do not
// cancel each other.
type Installer struct {
	Runner  Runner
	Options models.ExecutionOptions
	Logger  *zap.Logger
	// Out receives the command listing in dry-run mode
	Out io.Writer
}

// Install runs every install set and returns the joined per-tag failures
func (i *Installer) Install(ctx context.Context, sets []models.InstallSet) error {
	log := logging.OrNop(i.Logger)

	if i.Options.DryRun {
		for _, set := range sets {
			for _, cmd := range set.Commands {
				if i.Out != nil {
					fmt.Fprintf(i.Out, "[%s] %s\n", set.Tag, cmd.String())
				}
			}
		}
		return nil
	}

	limit := i.Options.Parallelism
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	errs := make([]error, len(sets))
	for idx, set := range sets {
		g.Go(func() error {
			errs[idx] = i.installTag(ctx, set, log)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (i *Installer) installTag(ctx context.Context, set models.InstallSet, log *zap.Logger) error {
	log = log.With(zap.String("tag", set.Tag))
	for _, cmd := range set.Commands {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", set.Tag, err)
		}

		log.Info("installing", zap.String("command", cmd.String()))
		if err := i.Runner.Run(ctx, i.Options.WorkingDir, cmd); err != nil {
			log.Error("install failed", zap.Error(err))
			return fmt.Errorf("%s: %w", set.Tag, err)
		}
	}
	return nil
}
