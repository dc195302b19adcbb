package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/vigil/internal/cache"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/util"
	"github.com/ppiankov/vigil/internal/worker"
)

// MaxBatchIDs is the wbgetentities cap on IDs per request
const MaxBatchIDs = 50

// Client talks to the Wikidata MediaWiki API and Special:EntityData.
// Revision JSON goes through the optional store, which is normally
// built to never expire it: a revision is immutable once it exists.
type Client struct {
	httpClient    *http.Client
	apiURL        string
	entityDataURL string
	userAgent     string
	maxBytes      int64
	limiter       *worker.Limiter
	store         cache.Cache // nil disables caching
}

// NewClient creates a Wikidata API client from configuration
func NewClient(cfg *model.Config, store cache.Cache) *Client {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		apiURL:        cfg.Wikidata.APIURL,
		entityDataURL: cfg.Wikidata.EntityDataURL,
		userAgent:     cfg.HTTP.UserAgent,
		maxBytes:      cfg.HTTP.MaxBodyBytes,
		limiter:       worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		store:         store,
	}
}

// EntityAtRevision fetches the entity JSON for qid at a specific
// revision. Cache hits skip the network entirely.
func (c *Client) EntityAtRevision(ctx context.Context, qid string, revid int64) (*Entity, error) {
	key := cache.Key(fmt.Sprintf("entity:%s:%d", qid, revid))
	if c.store != nil {
		if data, ok := c.store.Get(key); ok {
			return parseEntityData(data, qid)
		}
	}

	fetchURL := fmt.Sprintf("%s/%s.json?revision=%d", c.entityDataURL, qid, revid)
	body, err := c.get(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s@%d: %w", qid, revid, err)
	}

	entity, err := parseEntityData(body, qid)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		_ = c.store.Set(key, body)
	}

	return entity, nil
}

// parseEntityData unwraps the {"entities": {qid: {...}}} envelope
func parseEntityData(data []byte, qid string) (*Entity, error) {
	var envelope struct {
		Entities map[string]*Entity `json:"entities"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse entity data: %w", err)
	}

	if entity, ok := envelope.Entities[qid]; ok {
		return entity, nil
	}
	return nil, fmt.Errorf("entity %s not in response", qid)
}

// RecentChangesOptions filters the recentchanges listing
type RecentChangesOptions struct {
	Limit       int    // Total changes to collect
	Tag         string // Only changes carrying this tag
	ExcludeBots bool
}

// RecentChanges lists recent mainspace edits, following API
// continuation until the requested total is collected.
func (c *Client) RecentChanges(ctx context.Context, opts RecentChangesOptions) ([]*model.Edit, error) {
	if opts.Limit <= 0 {
		return nil, nil
	}

	var edits []*model.Edit
	cont := ""

	for len(edits) < opts.Limit {
		params := url.Values{}
		params.Set("action", "query")
		params.Set("format", "json")
		params.Set("formatversion", "2")
		params.Set("list", "recentchanges")
		params.Set("rcnamespace", "0")
		params.Set("rctype", "edit")
		params.Set("rcprop", "title|ids|user|comment|timestamp|tags")
		remaining := opts.Limit - len(edits)
		if remaining > 500 {
			remaining = 500
		}
		params.Set("rclimit", strconv.Itoa(remaining))
		if opts.ExcludeBots {
			params.Set("rcshow", "!bot")
		}
		if opts.Tag != "" {
			params.Set("rctag", opts.Tag)
		}
		if cont != "" {
			params.Set("rccontinue", cont)
		}

		body, err := c.get(ctx, c.apiURL+"?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("list recent changes: %w", err)
		}

		var resp struct {
			Continue struct {
				RCContinue string `json:"rccontinue"`
			} `json:"continue"`
			Query struct {
				RecentChanges []recentChange `json:"recentchanges"`
			} `json:"query"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parse recent changes: %w", err)
		}

		for _, rc := range resp.Query.RecentChanges {
			edits = append(edits, rc.toEdit())
			if len(edits) == opts.Limit {
				break
			}
		}

		if resp.Continue.RCContinue == "" {
			break
		}
		cont = resp.Continue.RCContinue
	}

	return edits, nil
}

// recentChange is one entry of the recentchanges listing
type recentChange struct {
	Title     string   `json:"title"`
	RCID      int64    `json:"rcid"`
	RevID     int64    `json:"revid"`
	OldRevID  int64    `json:"old_revid"`
	User      string   `json:"user"`
	Timestamp string   `json:"timestamp"`
	Comment   string   `json:"comment"`
	Tags      []string `json:"tags"`
}

func (rc recentChange) toEdit() *model.Edit {
	tags := rc.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.Edit{
		RCID:      rc.RCID,
		RevID:     rc.RevID,
		OldRevID:  rc.OldRevID,
		Title:     rc.Title,
		User:      rc.User,
		Timestamp: rc.Timestamp,
		Comment:   rc.Comment,
		Tags:      tags,
	}
}

// Labels fetches labels and descriptions for up to MaxBatchIDs entities
// in the given languages. Missing entities come back without terms.
func (c *Client) Labels(ctx context.Context, ids []string, languages []string) (map[string]*Entity, error) {
	if len(ids) == 0 {
		return map[string]*Entity{}, nil
	}
	if len(ids) > MaxBatchIDs {
		return nil, fmt.Errorf("too many ids: %d (max %d)", len(ids), MaxBatchIDs)
	}

	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("format", "json")
	params.Set("props", "labels|descriptions")
	params.Set("ids", strings.Join(ids, "|"))
	if len(languages) > 0 {
		params.Set("languages", strings.Join(languages, "|"))
	}

	body, err := c.get(ctx, c.apiURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("get entities: %w", err)
	}

	var resp struct {
		Entities map[string]*Entity `json:"entities"`
		Error    *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse entities: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("wbgetentities: %s: %s", resp.Error.Code, resp.Error.Info)
	}

	return resp.Entities, nil
}

// get performs a rate-limited GET and returns the size-capped body
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, c.maxBytes)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
