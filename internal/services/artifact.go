package services

import (
	"fmt"
	"strings"
	"time"

	"zela-wheel-backend/internal/config"
	"zela-wheel-backend/internal/models"
)

type ArtifactBuilder struct {
	base      string
	extension string
	note      string
}

func NewArtifactBuilder(cfg config.ArtifactConfig) *ArtifactBuilder {
	return &ArtifactBuilder{
		base:      cfg.Base,
		extension: strings.TrimPrefix(cfg.Extension, "."),
		note:      cfg.Note,
	}
}

// Build renders the downloadable prize file, e.g. ZELA-1718000000000.zela.
func (b *ArtifactBuilder) Build(token models.IssuedToken, issuedAt time.Time) models.Artifact {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TOKEN:%s\n", token.Token)
	fmt.Fprintf(&sb, "ISSUED:%s\n", issuedAt.UTC().Format(time.RFC3339Nano))
	if !token.ExpiresAt.IsZero() {
		fmt.Fprintf(&sb, "EXPIRES:%s\n", token.ExpiresAt.UTC().Format(time.RFC3339Nano))
	}
	fmt.Fprintf(&sb, "NOTE: %s\n", b.note)

	return models.Artifact{
		Filename: fmt.Sprintf("%s%d.%s", b.base, issuedAt.UnixMilli(), b.extension),
		Content:  []byte(sb.String()),
	}
}
