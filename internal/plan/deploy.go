// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"

	"github.com/kusari-oss/piper/internal/core/models"
)

// DeployStep returns the single deploy step for target, or nil when there is no target
func DeployStep(target models.DeployTarget) (*models.Step, error) {
	switch target {
	case "":
		return nil, nil
	case models.DeployVercel:
		return &models.Step{
			Name: "Vercel Deploy",
			Uses: "amondnet/vercel-action@v25",
			With: map[string]string{
				"vercel-org-id":     "${{ secrets.VERCEL_ORG_ID }}",
				"vercel-project-id": "${{ secrets.VERCEL_PROJECT_ID }}",
				"vercel-token":      "${{ secrets.VERCEL_TOKEN }}",
			},
		}, nil
	case models.DeployNetlify:
		return &models.Step{
			Name: "Netlify Deploy",
			Run:  "npx netlify-cli deploy --prod --dir=.",
			Env: map[string]string{
				"NETLIFY_AUTH_TOKEN": "${{ secrets.NETLIFY_AUTH_TOKEN }}",
				"NETLIFY_SITE_ID":    "${{ secrets.NETLIFY_SITE_ID }}",
			},
		}, nil
	case models.DeployHeroku:
		// TODO: replace with a real deploy once a Heroku app name is configurable
		return &models.Step{Name: "Heroku", Run: "echo 'Heroku deployment would go here'"}, nil
	case models.DeployRailway:
		return &models.Step{
			Name: "Railway Up",
			Run:  "curl -fsSL https://railway.app/install.sh | sh && railway up",
		}, nil
	case models.DeployDocker:
		return &models.Step{Name: "Docker Build", Run: "docker build -t app:ci ."}, nil
	}
	return nil, fmt.Errorf("unknown deploy target '%s'", target)
}
