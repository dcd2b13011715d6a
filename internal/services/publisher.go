package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"city-deployer-service/internal/config"
	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/ports"
)

// Publisher upserts one city's Artifact into its deterministic
// destination repository: create-or-reuse the repository, write each
// file conditionally against its current version token, then request
// public serving. At most one destination exists per normalized city
// name.
type Publisher struct {
	host  ports.Hosting
	cfg   config.Config
	log   *zap.Logger
	owner string
}

func NewPublisher(host ports.Hosting, cfg config.Config, log *zap.Logger) *Publisher {
	return &Publisher{host: host, cfg: cfg, log: log}
}

// DestinationName derives the stable repository name for a city:
// case-preserving, spaces to dashes, commas stripped. The same city
// always maps to the same destination.
func DestinationName(req domain.CityRequest, prefix, suffix string) string {
	name := strings.ReplaceAll(req.Name, ",", "")
	name = strings.Join(strings.Fields(name), "-")
	return prefix + name + suffix
}

// Owner returns the destination namespace (the credential owner),
// resolving it on first use.
func (p *Publisher) Owner(ctx context.Context) (string, error) {
	if p.owner != "" {
		return p.owner, nil
	}

	login, err := p.host.AuthenticatedUser(ctx)
	if err != nil {
		return "", fmt.Errorf("publisher: resolve owner: %w", err)
	}
	p.owner = login
	return login, nil
}

// Publish writes the artifact to the city's destination. Auxiliary file
// and serving-enablement failures degrade with a log; a failed document
// write is an error so no destination is left without its page content.
func (p *Publisher) Publish(
	ctx context.Context,
	req domain.CityRequest,
	artifact domain.Artifact,
) (domain.DestinationHandle, error) {
	owner, err := p.Owner(ctx)
	if err != nil {
		return domain.DestinationHandle{}, err
	}

	name := DestinationName(req, p.cfg.RepoPrefix, p.cfg.RepoSuffix)
	log := p.log.With(zap.String("city", req.Name), zap.String("destination", name))

	handle := domain.DestinationHandle{Owner: owner, Name: name}

	repo, err := p.ensureRepo(ctx, owner, name, req, log)
	if err != nil {
		return handle, err
	}
	handle.Existed = repo.existed
	handle.HTMLURL = repo.info.HTMLURL

	// Auxiliary files before the document, so serving is never enabled
	// for a destination missing its markers.
	for _, path := range []string{p.cfg.MarkerFile, p.cfg.VerificationFile, p.cfg.RedirectFile} {
		content, ok := artifact.Files[path]
		if !ok {
			continue
		}
		if err := p.putFile(ctx, owner, name, path, req, content); err != nil {
			log.Warn("auxiliary file write degraded", zap.String("path", path), zap.Error(err))
		}
	}

	index, ok := artifact.Files[p.cfg.IndexFile]
	if !ok {
		return handle, fmt.Errorf("publish %s: artifact has no %s", req.Name, p.cfg.IndexFile)
	}
	if err := p.putFile(ctx, owner, name, p.cfg.IndexFile, req, index); err != nil {
		return handle, fmt.Errorf("publish %s: %w", req.Name, err)
	}

	pagesURL, err := p.host.EnablePages(ctx, owner, name)
	if err != nil {
		log.Warn("pages enablement degraded", zap.Error(err))
	}
	handle.PagesURL = pagesURL

	log.Info("published destination",
		zap.Bool("existed", handle.Existed),
		zap.String("html_url", handle.HTMLURL),
		zap.String("pages_url", handle.PagesURL))
	return handle, nil
}

type ensuredRepo struct {
	info    ports.RepoInfo
	existed bool
}

// ensureRepo looks up the destination and creates it when absent,
// tolerating a creation race that reports "already exists".
func (p *Publisher) ensureRepo(
	ctx context.Context,
	owner, name string,
	req domain.CityRequest,
	log *zap.Logger,
) (ensuredRepo, error) {
	info, err := p.host.GetRepo(ctx, owner, name)
	if err == nil {
		return ensuredRepo{info: info, existed: true}, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return ensuredRepo{}, fmt.Errorf("publish %s: lookup destination: %w", req.Name, err)
	}

	description := fmt.Sprintf("Local Deployment Hub for The Titan Software Guild in %s", req.Name)
	info, err = p.host.CreateRepo(ctx, name, description)
	if err == nil {
		log.Info("created destination repository")
		return ensuredRepo{info: info}, nil
	}
	if !errors.Is(err, ports.ErrAlreadyExists) {
		return ensuredRepo{}, fmt.Errorf("publish %s: create destination: %w", req.Name, err)
	}

	// Lost the create race; the destination exists now.
	info, err = p.host.GetRepo(ctx, owner, name)
	if err != nil {
		return ensuredRepo{}, fmt.Errorf("publish %s: lookup destination after create race: %w", req.Name, err)
	}
	return ensuredRepo{info: info, existed: true}, nil
}

// putFile performs the conditional write: fetch the current version
// token when the file exists, create it fresh otherwise.
func (p *Publisher) putFile(
	ctx context.Context,
	owner, name, path string,
	req domain.CityRequest,
	content []byte,
) error {
	sha, err := p.host.GetFileSHA(ctx, owner, name, path)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("get version token for %s: %w", path, err)
		}
		sha = ""
	}

	message := fmt.Sprintf("Deploy site content for %s", req.Name)
	if sha != "" {
		message = fmt.Sprintf("Redeploy site content for %s", req.Name)
	}

	if err := p.host.PutFile(ctx, owner, name, path, message, content, sha); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
