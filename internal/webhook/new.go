package webhook

import (
	"github.com/google/uuid"

	"autoremedy/internal/remediation"
	pkgLog "autoremedy/pkg/log"
)

const maxBodyBytes = 5 << 20

type Handler struct {
	remediationUC remediation.UseCase
	security      *SecurityValidator
	githubParser  *GitHubWebhookParser
	netlifyParser *NetlifyWebhookParser
	l             pkgLog.Logger
	newID         func() string
}

func NewHandler(
	remediationUC remediation.UseCase,
	securityConfig SecurityConfig,
	l pkgLog.Logger,
) *Handler {
	return &Handler{
		remediationUC: remediationUC,
		security:      NewSecurityValidator(securityConfig),
		githubParser:  NewGitHubParser(),
		netlifyParser: NewNetlifyParser(),
		l:             l,
		newID:         uuid.NewString,
	}
}
