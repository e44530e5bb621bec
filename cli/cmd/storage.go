package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	lodelibrary "github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/sigsplit/cli/config"
	"github.com/justapithecus/sigsplit/lode"
)

// storageChoice is the resolved run archive configuration.
type storageChoice struct {
	dataset      string
	backend      string
	path         string // fs: directory, s3: bucket/prefix
	region       string
	endpoint     string
	usePathStyle bool
}

// enabled reports whether archiving was requested.
func (sc storageChoice) enabled() bool {
	return sc.path != "" || sc.backend == "s3"
}

func resolveStorageChoice(c *cli.Context, cfg *config.Config) storageChoice {
	return storageChoice{
		dataset:      resolveString(c, "storage-dataset", configVal(cfg, func(c *config.Config) string { return c.Storage.Dataset })),
		backend:      resolveString(c, "storage-backend", configVal(cfg, func(c *config.Config) string { return c.Storage.Backend })),
		path:         resolveString(c, "storage-path", configVal(cfg, func(c *config.Config) string { return c.Storage.Path })),
		region:       resolveString(c, "storage-region", configVal(cfg, func(c *config.Config) string { return c.Storage.Region })),
		endpoint:     resolveString(c, "storage-endpoint", configVal(cfg, func(c *config.Config) string { return c.Storage.Endpoint })),
		usePathStyle: resolveBool(c, "storage-s3-path-style", configVal(cfg, func(c *config.Config) bool { return c.Storage.S3PathStyle })),
	}
}

// validateStorageConfig checks the archive configuration before the run
// starts. Messages say how to fix the problem.
func validateStorageConfig(sc storageChoice) error {
	switch sc.backend {
	case "fs":
		if sc.endpoint != "" || sc.usePathStyle {
			return errors.New("--storage-endpoint and --storage-s3-path-style apply only to --storage-backend s3")
		}
		info, err := os.Stat(sc.path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("--storage-path %q does not exist\n  Create it with: mkdir -p %s", sc.path, sc.path)
			}
			return fmt.Errorf("--storage-path %q: %w", sc.path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("--storage-path %q is not a directory", sc.path)
		}
	case "s3":
		if sc.path == "" {
			return errors.New("--storage-path required for s3 backend\n  Format: bucket-name/optional/prefix")
		}
	default:
		return fmt.Errorf("invalid --storage-backend %q\n  Valid options: fs, s3", sc.backend)
	}
	return nil
}

func s3Config(sc storageChoice) lode.S3Config {
	bucket, prefix := lode.ParseS3Path(sc.path)
	return lode.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       sc.region,
		Endpoint:     sc.endpoint,
		UsePathStyle: sc.usePathStyle,
	}
}

// buildArchiveClient opens the archive for one run's partition.
func buildArchiveClient(ctx context.Context, sc storageChoice, cfg lode.Config) (lode.Client, error) {
	var (
		client *lode.LodeClient
		err    error
	)
	switch sc.backend {
	case "fs":
		client, err = lode.NewLodeClient(cfg, sc.path)
	case "s3":
		client, err = lode.NewLodeS3Client(ctx, cfg, s3Config(sc))
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", sc.backend)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// openReadDataset opens the archive dataset for queries.
func openReadDataset(ctx context.Context, sc storageChoice) (lodelibrary.Dataset, error) {
	switch sc.backend {
	case "fs":
		return lode.NewReadDatasetFS(sc.dataset, sc.path)
	case "s3":
		return lode.NewReadDatasetS3(ctx, sc.dataset, s3Config(sc))
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", sc.backend)
	}
}

// buildStoragePath returns the URI of a run's partition in the archive.
// Unknown backends get the bare partition path.
func buildStoragePath(sc storageChoice, cfg lode.Config) string {
	dataset := cfg.Dataset
	if dataset == "" {
		dataset = lode.DefaultDataset
	}
	partition := path.Join(
		"datasets", dataset, "partitions",
		"organism="+cfg.Organism,
		"day="+cfg.Day,
		"run_id="+cfg.RunID,
	)

	switch sc.backend {
	case "fs":
		root, err := filepath.Abs(sc.path)
		if err != nil {
			root = sc.path
		}
		return "file://" + path.Join(filepath.ToSlash(root), partition)
	case "s3":
		bucket, prefix := lode.ParseS3Path(sc.path)
		return "s3://" + path.Join(bucket, prefix, partition)
	default:
		return partition
	}
}
