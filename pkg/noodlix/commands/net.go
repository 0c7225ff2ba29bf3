package commands

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

var schemeRE = regexp.MustCompile(`(?i)^https?://`)

// downloadName picks the file name wget saves under
func downloadName(rawURL, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if name := rawURL[strings.LastIndex(rawURL, "/")+1:]; name != "" {
		return name
	}
	return "downloaded_file"
}

func (b *builtins) wget(ctx context.Context, inv shell.Invocation) (shell.Result, error) {
	rawURL := inv.Arg(0)
	filename := downloadName(rawURL, inv.Arg(1))
	target := inv.Tree.Resolve(filename)

	parent, ok := inv.Tree.GetNode(vpath.Parent(target))
	if !ok || !parent.IsDir() || !inv.Tree.Can(parent.Path, core.PermWrite) {
		return shell.Output(fmt.Sprintf("wget: cannot write to '%s': Permission denied in target directory.", filename)), nil
	}

	page, err := b.deps.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return shell.Output(fmt.Sprintf("wget: error downloading from %s: %s", rawURL, core.Message(err))), nil
	}
	if !page.OK() {
		status := page.StatusText
		if status == "" {
			status = fmt.Sprint(page.Status)
		}
		return shell.Output(fmt.Sprintf("wget: failed to download from %s: %s", rawURL, status)), nil
	}
	if !page.IsText() {
		return shell.Output(fmt.Sprintf("wget: '%s': binary content (%s) is not supported", filename, page.MIME)), nil
	}

	content := string(page.Body)
	if err := inv.Tree.WriteFile(target, content, inv.User); err != nil {
		return shell.Output(fmt.Sprintf("wget: failed to save file '%s': %s", filename, core.Reason(err))), nil
	}
	return shell.Output(fmt.Sprintf("wget: '%s' saved successfully. (%d bytes)", filename, len(content))), nil
}

func (b *builtins) noodl(_ context.Context, inv shell.Invocation) (shell.Result, error) {
	target := inv.Arg(0)
	absolute := target
	if !schemeRE.MatchString(target) {
		absolute = "http://" + target
	}

	u, err := url.ParseRequestURI(absolute)
	if err != nil || u.Host == "" {
		return shell.Output("noodl: Invalid URL: " + target), nil
	}
	return shell.EnterBrowser(absolute), nil
}
