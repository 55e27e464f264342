package main

import (
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/mtlrelink/internal/logging"
	"github.com/philipparndt/mtlrelink/pkg/relink"
	"github.com/philipparndt/mtlrelink/pkg/watcher"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Relink the tree, then keep relinking meshes as they change",
		Long: `Run a full relink, then watch every directory of the tree. Whenever a .obj
file is written or created, its directory is relinked again. Meshes that already
point at the target are not rewritten. Stops on Ctrl-C or the first error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, debounce)
		},
	}

	cmd.Flags().Bool("cleanup", false, "Delete the replaced .mtl files")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a changed directory is relinked")

	return cmd
}

func runWatch(cmd *cobra.Command, debounce time.Duration) error {
	ctx := cmd.Context()
	cfg := configFrom(cmd)
	log := logging.Get(ctx)

	r := relink.New(relink.Options{
		Target:        cfg.Target,
		Cleanup:       cfg.Cleanup,
		SkipUnchanged: true,
	})
	if _, err := r.Run(ctx, cfg.Root); err != nil {
		return err
	}

	w, err := watcher.NewDirWatcher(debounce, relink.IsMeshName)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.AddTree(cfg.Root); err != nil {
		return err
	}

	// Callbacks fire on timer goroutines; directories are still relinked one at a time.
	var mu sync.Mutex
	errc := make(chan error, 1)

	w.Start(ctx, func(dir string) {
		mu.Lock()
		defer mu.Unlock()

		res, err := r.ProcessDir(ctx, dir)
		if err != nil {
			select {
			case errc <- err:
			default:
			}
			return
		}
		if res.Written > 0 || len(res.Deleted) > 0 {
			log.Info("relinked directory", "dir", dir, "written", res.Written, "deleted", len(res.Deleted))
		}
	})

	log.Info("watching for changes", "root", cfg.Root, "directories", w.Dirs())

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	}
}
