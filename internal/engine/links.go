package engine

import (
	"context"

	"github.com/phyten/docblocker/internal/gitremote"
)

// addLinks points every finding at its line in the remote's web view of HEAD.
// Fix runs link to HEAD as well, so the line numbers are those before the fix.
func addLinks(ctx context.Context, opts Options, findings []Finding) error {
	info, err := gitremote.Detect(ctx, opts.Runner, opts.RepoDir, opts.LinkRemote, opts.LinkScheme)
	if err != nil {
		return err
	}
	sha, err := gitremote.Head(ctx, opts.Runner, opts.RepoDir)
	if err != nil {
		return err
	}
	for i := range findings {
		findings[i].URL = info.BlobURL(sha, findings[i].File, findings[i].Line)
	}
	return nil
}
