package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/runger/listpick/internal/picker"
)

// ExecProvider serves picker pages by running a command per page. The
// command line is a template: {query}, {page} and {limit} are replaced in
// each argument after splitting, so a query never changes the argv shape.
//
// The command prints a single JSON object:
//
//	{"data": ["label", {"label": "l", "value": "v"}], "total": 42, "more": true}
//
// When "more" is omitted, more pages are assumed while the rows seen so far
// are fewer than "total".
type ExecProvider struct {
	argv   []string
	logger *slog.Logger
}

// NewExecProvider parses template. It fails if the template is empty or
// badly quoted.
func NewExecProvider(template string, logger *slog.Logger) (*ExecProvider, error) {
	argv, err := splitCommand(template)
	if err != nil {
		return nil, err
	}
	return &ExecProvider{argv: argv, logger: logger}, nil
}

// Fetch implements picker.Provider.
func (p *ExecProvider) Fetch(ctx context.Context, req picker.Request) (picker.Response, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = picker.DefaultPageSize
	}
	page := max(req.Page, 1)

	argv := p.expand(req.Query, page, limit)
	if p.logger != nil {
		p.logger.Debug("exec page", "cmd", argv[0], "page", page, "limit", limit)
	}

	out, err := runArgv(ctx, argv)
	if err != nil {
		return picker.Response{}, err
	}

	resp, err := decodePage(out)
	if err != nil {
		return picker.Response{}, fmt.Errorf("%s: %w", argv[0], err)
	}
	if resp.moreUnset {
		resp.More = (page-1)*limit+len(resp.Items) < resp.Total
	}
	return resp.Response, nil
}

func (p *ExecProvider) expand(query string, page, limit int) []string {
	r := strings.NewReplacer(
		"{query}", query,
		"{page}", strconv.Itoa(page),
		"{limit}", strconv.Itoa(limit),
	)
	argv := make([]string, len(p.argv))
	for i, arg := range p.argv {
		argv[i] = r.Replace(arg)
	}
	return argv
}

type wirePage struct {
	Data  []json.RawMessage `json:"data"`
	Total int               `json:"total"`
	More  *bool             `json:"more"`
}

type wireItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type decodedPage struct {
	picker.Response
	moreUnset bool
}

// decodePage parses one page of command output. Entries are either bare
// strings or {"label","value"} objects; anything else is an error.
func decodePage(out []byte) (decodedPage, error) {
	var wp wirePage
	if err := json.Unmarshal(bytes.TrimSpace(out), &wp); err != nil {
		return decodedPage{}, fmt.Errorf("decoding page: %w", err)
	}

	items := make([]picker.Item, 0, len(wp.Data))
	for i, raw := range wp.Data {
		it, err := decodeItem(raw)
		if err != nil {
			return decodedPage{}, fmt.Errorf("decoding entry %d: %w", i, err)
		}
		items = append(items, it)
	}

	dp := decodedPage{Response: picker.Response{Items: items, Total: wp.Total}}
	if wp.More == nil {
		dp.moreUnset = true
	} else {
		dp.More = *wp.More
	}
	return dp, nil
}

func decodeItem(raw json.RawMessage) (picker.Item, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return picker.Item{}, err
		}
		return picker.Item{Label: picker.CleanLabel(s), Value: s}, nil
	}

	var wi wireItem
	if err := json.Unmarshal(raw, &wi); err != nil {
		return picker.Item{}, err
	}
	value := wi.Value
	if value == "" {
		value = wi.Label
	}
	return picker.Item{Label: picker.CleanLabel(wi.Label), Value: value}, nil
}
