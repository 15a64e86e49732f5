// SPDX-License-Identifier: Apache-2.0

package detect

// Category groups signal tags by what they decide
type Category string

const (
	CategoryStack     Category = "stack"
	CategoryFramework Category = "framework"
	CategoryDeploy    Category = "deploy"
)

// Signal maps a tag to the marker files that are evidence for it
type Signal struct {
	Tag      string
	Category Category
	Markers  []string
}

// signalTable is read-only after init. Marker order is preserved in scan results.
var signalTable = []Signal{
	{Tag: "node", Category: CategoryStack, Markers: []string{"package.json", "pnpm-lock.yaml", "yarn.lock", "package-lock.json"}},
	{Tag: "python", Category: CategoryStack, Markers: []string{"requirements.txt", "pyproject.toml", "tox.ini", "setup.py", "setup.cfg", "pytest.ini"}},
	{Tag: "rust", Category: CategoryStack, Markers: []string{"Cargo.toml", "Cargo.lock"}},
	{Tag: "go", Category: CategoryStack, Markers: []string{"go.mod", "go.sum"}},

	{Tag: "next", Category: CategoryFramework, Markers: []string{"next.config.js", "next.config.mjs", "next.config.ts"}},
	{Tag: "nuxt", Category: CategoryFramework, Markers: []string{"nuxt.config.js", "nuxt.config.ts"}},
	{Tag: "vue", Category: CategoryFramework, Markers: []string{"vue.config.js"}},
	{Tag: "svelte", Category: CategoryFramework, Markers: []string{"svelte.config.js"}},

	{Tag: "vercel", Category: CategoryDeploy, Markers: []string{"vercel.json"}},
	{Tag: "netlify", Category: CategoryDeploy, Markers: []string{"netlify.toml"}},
	{Tag: "heroku", Category: CategoryDeploy, Markers: []string{"Procfile", "app.json"}},
	{Tag: "railway", Category: CategoryDeploy, Markers: []string{"railway.json", "railway.toml"}},
	{Tag: "docker", Category: CategoryDeploy, Markers: []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml", "compose.yaml"}},
}

// KnownTags returns every tag in the signal table, in table order
func KnownTags() []string {
	tags := make([]string, 0, len(signalTable))
	for _, s := range signalTable {
		tags = append(tags, s.Tag)
	}
	return tags
}

// IsKnownTag reports whether tag appears in the signal table
func IsKnownTag(tag string) bool {
	for _, s := range signalTable {
		if s.Tag == tag {
			return true
		}
	}
	return false
}
