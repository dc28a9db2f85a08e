package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const validConfig = `
deps:
  - dst: /opt/genesis_core
    src: ../genesis_core
    exclude: ["build*"]
elements:
  - name: core
    manifest: manifests/core.yaml
    artifacts:
      - extra/readme.txt
    images:
      - name: demo
        format: raw
        profile: ubuntu_24
        script: images/install.sh
        envs: [GC_VERSION]
        override:
          disk_size: "20G"
`

// Writes a configuration document into a fresh project layout and returns
// the project root.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, WorkDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	return root
}

func TestLoad(t *testing.T) {
	root := writeConfig(t, validConfig)

	cfg, err := Load(root)
	require.NoError(t, err)

	require.Len(t, cfg.Deps, 1)
	assert.Equal(t, "/opt/genesis_core", cfg.Deps[0].Dst)
	assert.Equal(t, "../genesis_core", cfg.Deps[0].Src)
	assert.Equal(t, []string{"build*"}, cfg.Deps[0].Exclude)

	require.Len(t, cfg.Elements, 1)
	elem := cfg.Elements[0]
	assert.Equal(t, "core", elem.Name)

	workDir := filepath.Join(root, WorkDirName)
	assert.Equal(t, workDir, cfg.Dir())
	assert.Equal(t, filepath.Join(workDir, "manifests/core.yaml"), elem.Manifest)
	require.Len(t, elem.Artifacts, 1)
	assert.Equal(t, filepath.Join(workDir, "extra/readme.txt"), elem.Artifacts[0])

	require.Len(t, elem.Images, 1)
	img := elem.Images[0]
	assert.Equal(t, "demo", img.Name)
	assert.Equal(t, "raw", img.Format)
	assert.Equal(t, "ubuntu_24", img.Profile)
	assert.Equal(t, filepath.Join(workDir, "images/install.sh"), img.Script)
	assert.Equal(t, []string{"GC_VERSION"}, img.Envs)
	assert.Equal(t, map[string]any{"disk_size": "20G"}, img.Override)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMalformed(t *testing.T) {
	root := writeConfig(t, "elements: [}")

	_, err := Load(root)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestLoadUnknownFieldsIgnored(t *testing.T) {
	root := writeConfig(t, `
future_section:
  some: thing
elements:
  - images:
      - name: demo
        format: raw
        profile: ubuntu_24
        script: install.sh
        future_field: 42
`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Len(t, cfg.Elements, 1)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no elements",
			content: "deps: []",
		},
		{
			name:    "element without images",
			content: "elements:\n  - manifest: m.yaml",
		},
		{
			name: "image without name",
			content: `
elements:
  - images:
      - format: raw
        profile: ubuntu_24
        script: install.sh
`,
		},
		{
			name: "image without script",
			content: `
elements:
  - images:
      - name: demo
        format: raw
        profile: ubuntu_24
`,
		},
		{
			name: "unsupported profile",
			content: `
elements:
  - images:
      - name: demo
        format: raw
        profile: gentoo
        script: install.sh
`,
		},
		{
			name: "unsupported format",
			content: `
elements:
  - images:
      - name: demo
        format: vdi
        profile: ubuntu_24
        script: install.sh
`,
		},
		{
			name: "duplicate image names",
			content: `
elements:
  - images:
      - name: demo
        format: raw
        profile: ubuntu_24
        script: install.sh
  - images:
      - name: demo
        format: qcow2
        profile: ubuntu_22
        script: install.sh
`,
		},
		{
			name: "dep without dst",
			content: `
deps:
  - src: ../app
elements:
  - images:
      - name: demo
        format: raw
        profile: ubuntu_24
        script: install.sh
`,
		},
		{
			name: "dep without src",
			content: `
deps:
  - dst: /opt/app
elements:
  - images:
      - name: demo
        format: raw
        profile: ubuntu_24
        script: install.sh
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeConfig(t, tt.content)
			_, err := Load(root)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

// Parsing, re-serializing, and re-parsing a configuration yields an
// identical model.
func TestRoundTrip(t *testing.T) {
	root := writeConfig(t, validConfig)

	cfg, err := Load(root)
	require.NoError(t, err)

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var again Config
	require.NoError(t, yaml.Unmarshal(data, &again))

	assert.Equal(t, cfg.Deps, again.Deps)
	assert.Equal(t, cfg.Elements, again.Elements)
}
