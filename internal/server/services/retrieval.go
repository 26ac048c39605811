// Package services holds the server's use cases: storing uploads under a
// reference number and turning a reference number or retrieval key into a
// packaged archive plus the command that fetches it.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/dmitrijs2005/filedo/internal/archive"
	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/dmitrijs2005/filedo/internal/cryptox"
	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/filex"
	"github.com/dmitrijs2005/filedo/internal/logging"
	sc "github.com/dmitrijs2005/filedo/internal/server/config"
	"github.com/dmitrijs2005/filedo/internal/server/models"
	"github.com/dmitrijs2005/filedo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filedo/internal/storage"
)

// IncomingFile is one uploaded part. Name is the client supplied filename.
type IncomingFile struct {
	Name string
	Body io.Reader
}

type UploadResult struct {
	ReferenceNumber string
	StoredRoot      string
	Filenames       []string
	Key             string
}

type RetrievalResult struct {
	// Filenames is the full manifest, including names that were not found.
	Filenames        []string
	Missing          []string
	ArchiveName      string
	ArchivePath      string
	FetchInstruction string
	// DownloadURL is set only when the archive was published to object storage.
	DownloadURL string
}

// Publisher makes a staged archive downloadable and returns its URL.
type Publisher interface {
	Publish(ctx context.Context, archivePath, archiveName string) (string, error)
}

type RetrievalService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *cryptox.ManifestCodec
	packager    *archive.Packager
	roots       []string
	scpUser     string
	chooser     storage.Chooser
	publisher   Publisher
	logger      logging.Logger
}

type Option func(*RetrievalService)

// WithChooser replaces the random source used for placing uploads.
func WithChooser(c storage.Chooser) Option {
	return func(s *RetrievalService) { s.chooser = c }
}

func WithPublisher(p Publisher) Option {
	return func(s *RetrievalService) { s.publisher = p }
}

func WithLogger(l logging.Logger) Option {
	return func(s *RetrievalService) { s.logger = l }
}

// WithPackager replaces the packager built from the staging directory.
func WithPackager(p *archive.Packager) Option {
	return func(s *RetrievalService) { s.packager = p }
}

func NewRetrievalService(db *sql.DB, repomanager repomanager.RepositoryManager, codec *cryptox.ManifestCodec, config *sc.Config, opts ...Option) *RetrievalService {
	s := &RetrievalService{
		db:          db,
		repomanager: repomanager,
		codec:       codec,
		packager:    archive.NewPackager(config.StagingDir),
		roots:       append([]string(nil), config.SearchPaths...),
		scpUser:     config.SCPUser,
		chooser:     storage.DefaultChooser,
		logger:      logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "retrieval")
	return s
}

// Upload stores every file under one randomly chosen root, encrypts the list
// of stored names and records it under referenceNumber.
//
// Files whose names sanitize to nothing are skipped. Files already written
// stay on disk when recording fails.
func (s *RetrievalService) Upload(ctx context.Context, referenceNumber string, files []IncomingFile) (*UploadResult, error) {
	names := make([]string, 0, len(files))
	valid := make([]IncomingFile, 0, len(files))
	for _, f := range files {
		name := filex.SanitizeFilename(f.Name)
		if name == "" {
			s.logger.Warn(ctx, "skipping upload with unusable filename", "filename", f.Name)
			continue
		}
		names = append(names, name)
		valid = append(valid, IncomingFile{Name: name, Body: f.Body})
	}
	if len(valid) == 0 {
		return nil, common.ErrNoValidFiles
	}

	root, err := storage.PickRoot(s.roots, s.chooser)
	if err != nil {
		return nil, err
	}
	if err := filex.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistFailure, err)
	}

	for _, f := range valid {
		if _, err := filex.SaveFile(root, f.Name, f.Body); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrPersistFailure, err)
		}
	}

	token, err := s.codec.Encrypt(names)
	if err != nil {
		return nil, fmt.Errorf("encrypt manifest: %w", err)
	}

	rec := &models.ManifestRecord{
		ReferenceNumber:   referenceNumber,
		StorageRoot:       sql.NullString{String: root, Valid: true},
		EncryptedManifest: token,
	}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Manifests(tx).Insert(ctx, rec)
	})
	if err != nil {
		s.logger.Error(ctx, "recording upload failed", "reference", referenceNumber, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	s.logger.Info(ctx, "upload stored", "reference", referenceNumber, "root", root, "files", len(names))

	return &UploadResult{
		ReferenceNumber: referenceNumber,
		StoredRoot:      root,
		Filenames:       names,
		Key:             token,
	}, nil
}

// RetrieveByKey packages the files listed in a retrieval key. The record
// holding the key, if any, narrows the search to its storage root; a failed
// lookup only widens the search to every root.
func (s *RetrievalService) RetrieveByKey(ctx context.Context, token, host string) (*RetrievalResult, error) {
	names, err := s.codec.Decrypt(token)
	if err != nil {
		s.logger.Warn(ctx, "invalid retrieval key")
		return nil, err
	}

	roots := s.roots
	rec, err := s.repomanager.Manifests(s.db).FindByEncryptedManifest(ctx, token)
	switch {
	case err == nil:
		roots = storage.SearchRoots(rec.Root(), s.roots)
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Warn(ctx, "root hint lookup failed, scanning all roots", "error", err)
	}

	return s.pack(ctx, names, roots, host)
}

// RetrieveByReference packages the files of the latest upload recorded for
// referenceNumber. With no record, referenceNumber itself is looked up as a
// filename in every root.
func (s *RetrievalService) RetrieveByReference(ctx context.Context, referenceNumber, host string) (*RetrievalResult, error) {
	var names, roots []string

	rec, err := s.repomanager.Manifests(s.db).FindByReferenceNumber(ctx, referenceNumber)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		names, roots = []string{referenceNumber}, s.roots
	case err != nil:
		s.logger.Error(ctx, "record lookup failed", "reference", referenceNumber, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	default:
		names, err = s.codec.Decrypt(rec.EncryptedManifest)
		if err != nil {
			s.logger.Warn(ctx, "stored manifest does not decrypt", "reference", referenceNumber, "record", rec.ID)
			return nil, err
		}
		roots = storage.SearchRoots(rec.Root(), s.roots)
	}

	return s.pack(ctx, names, roots, host)
}

func (s *RetrievalService) pack(ctx context.Context, names, roots []string, host string) (*RetrievalResult, error) {
	located := storage.Locate(names, roots)
	if located.Count() == 0 {
		return nil, fmt.Errorf("%w: none of %d files present", common.ErrorNotFound, len(names))
	}
	if len(located.Missing) > 0 {
		s.logger.Warn(ctx, "some files are missing", "missing", located.Missing)
	}

	ar, err := s.packager.Package(ctx, located.Paths())
	if err != nil {
		s.logger.Error(ctx, "packaging failed", "error", err)
		return nil, err
	}
	if ar.Count() == 0 {
		return nil, fmt.Errorf("%w: files vanished before packaging", common.ErrorNotFound)
	}

	res := &RetrievalResult{
		Filenames:        names,
		Missing:          located.Missing,
		ArchiveName:      ar.Name,
		ArchivePath:      ar.Path,
		FetchInstruction: s.FetchInstruction(host, ar.Name),
	}

	if s.publisher != nil {
		url, err := s.publisher.Publish(ctx, ar.Path, ar.Name)
		if err != nil {
			s.logger.Error(ctx, "publishing archive failed", "archive", ar.Name, "error", err)
		} else {
			res.DownloadURL = url
		}
	}

	s.logger.Info(ctx, "archive staged", "archive", ar.Name, "files", ar.Count())
	return res, nil
}

// FetchInstruction renders the scp command an operator runs to copy a staged
// archive. Any port in host is dropped.
func (s *RetrievalService) FetchInstruction(host, archiveName string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	dir := strings.TrimRight(s.packager.StagingDir(), "/")
	return fmt.Sprintf("scp %s@%s:%s/%s ./", s.scpUser, host, dir, archiveName)
}
