package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"regexp"
	"strings"

	"mosaic/internal/config"
	"mosaic/internal/domain"
	"mosaic/internal/domain/repositories"
	"mosaic/internal/domain/services"
	"mosaic/internal/storage"
)

// timestampSuffix matches the marker this resolver appends. A stem already
// carrying one is reused as the base instead of getting a second stamp.
var timestampSuffix = regexp.MustCompile(`_\d{4}-\d{2}-\d{2}-\d{6}$`)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type filenameResolver struct {
	folderRepo repositories.FolderRepository
	assetRepo  repositories.AssetRepository
	volumes    storage.VolumeRegistry
	clock      Clock
	randSuffix func(n int) string
	logger     *slog.Logger
}

// NewFilenameResolver creates a filename conflict resolver
func NewFilenameResolver(
	folderRepo repositories.FolderRepository,
	assetRepo repositories.AssetRepository,
	volumes storage.VolumeRegistry,
	clock Clock,
	logger *slog.Logger,
) services.FilenameResolver {
	return &filenameResolver{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		volumes:    volumes,
		clock:      clock,
		randSuffix: randomSuffix,
		logger:     logger,
	}
}

// Resolve returns filename unchanged when it is free in the folder, both
// among asset records and on the physical volume. On conflict it derives
// "stem_<timestamp>_<rand>.ext" and, if that is also taken, probes
// numbered variants up to the attempt limit.
func (s *filenameResolver) Resolve(ctx context.Context, filename string, folderID int64) (string, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return "", err
	}

	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	// One query covers the filename and every candidate: all of them share
	// the stem prefix.
	existing, err := s.assetRepo.ListFilenames(ctx, folderID, stem)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[strings.ToLower(name)] = true
	}

	var adapter storage.VolumeAdapter
	if folder.VolumeID != nil {
		if adapter, err = s.volumes.AdapterFor(*folder.VolumeID); err != nil {
			return "", err
		}
	}

	isTaken := func(name string) (bool, error) {
		if taken[strings.ToLower(name)] {
			return true, nil
		}
		if adapter == nil {
			return false, nil
		}
		exists, err := adapter.FileExists(ctx, folder.Path+name)
		if err != nil {
			return false, fmt.Errorf("%w: probe %q: %v", domain.ErrStorage, name, err)
		}
		return exists, nil
	}

	if conflict, err := isTaken(filename); err != nil {
		return "", err
	} else if !conflict {
		return filename, nil
	}

	base := stem
	if !timestampSuffix.MatchString(stem) {
		base += "_" + s.clock.Now().UTC().Format("2006-01-02-150405")
	}
	base += "_" + s.randSuffix(config.RandomSuffixLength)

	for i := 0; i <= config.MaxFilenameAttempts; i++ {
		suffix := ""
		if i > 0 {
			suffix = fmt.Sprintf("_%d", i)
		}
		candidate := truncateStem(base, suffix+ext) + suffix + ext

		if conflict, err := isTaken(candidate); err != nil {
			return "", err
		} else if !conflict {
			s.logger.Debug("filename conflict resolved",
				"folder_id", folderID,
				"requested", filename,
				"resolved", candidate,
			)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no free filename for %q after %d attempts",
		domain.ErrOperation, filename, config.MaxFilenameAttempts)
}

// truncateStem shortens the stem so the full candidate fits the filename
// length limit.
func truncateStem(stem, rest string) string {
	max := config.MaxFilenameLength - len(rest)
	if max < 0 {
		max = 0
	}
	if len(stem) > max {
		return stem[:max]
	}
	return stem
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}
