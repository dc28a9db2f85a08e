package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/infraguys/genesis-devtools/internal"
	"github.com/infraguys/genesis-devtools/internal/version"
)

// Represents the 'genesis get-version' command.
type GetVersionCmd struct {
	ProjectDir string `arg:"" help:"Project root directory." type:"existingdir"`
}

// Executes the get-version command, printing the resolved project version.
func (c *GetVersionCmd) Run(ctx context.Context) error {
	root, err := filepath.Abs(c.ProjectDir)
	if err != nil {
		return err
	}

	resolver := version.Resolver{Provider: version.NewGitProvider(root)}
	tag, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	fmt.Println(tag.String())
	return nil
}

// Represents the 'genesis version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
