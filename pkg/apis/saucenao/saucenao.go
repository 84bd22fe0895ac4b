// Package saucenao searches images on SauceNAO.
package saucenao

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
)

// BaseURL is the SauceNAO search endpoint
const BaseURL = "https://saucenao.com"

// DefaultNumRes is how many results are requested unless the owner changed it
const DefaultNumRes = 6

var serviceRe = regexp.MustCompile(`^Index #\d*: (?P<service>.*) - [^ ]*\.jpg$`)

// Entry is one search result
type Entry struct {
	Similarity string
	Thumbnail  string
	IndexID    int
	IndexName  string
	URLs       []string
	Title      string
	CreatedAt  time.Time
	MemberName string
	Creator    interface{}
	Material   string
	Characters string
	Source     string
	EngName    string
	JpName     string
	Part       string
	Type       string
	Year       string
	EstTime    string
}

// Service extracts the service name from the index name, empty when it does not match
func (e Entry) Service() string {
	m := serviceRe.FindStringSubmatch(e.IndexName)
	if m == nil {
		return ""
	}
	return m[1]
}

// Limits are the remaining searches of the API key
type Limits struct {
	Short          int
	Long           int
	ShortRemaining int
	LongRemaining  int
}

// Result is a search response
type Result struct {
	UserID            string
	AccountType       string
	Limits            Limits
	Status            int
	ResultsRequested  int
	Depth             string
	MinimumSimilarity float64
	QueryImage        string
	ResultsReturned   int
	Results           []Entry
}

type rawResponse struct {
	Header struct {
		UserID            flex    `json:"user_id"`
		AccountType       flex    `json:"account_type"`
		ShortLimit        flex    `json:"short_limit"`
		LongLimit         flex    `json:"long_limit"`
		ShortRemaining    int     `json:"short_remaining"`
		LongRemaining     int     `json:"long_remaining"`
		Status            int     `json:"status"`
		Message           string  `json:"message"`
		ResultsRequested  flex    `json:"results_requested"`
		SearchDepth       flex    `json:"search_depth"`
		MinimumSimilarity float64 `json:"minimum_similarity"`
		QueryImage        string  `json:"query_image"`
		ResultsReturned   int     `json:"results_returned"`
	} `json:"header"`
	Results []struct {
		Header struct {
			Similarity string `json:"similarity"`
			Thumbnail  string `json:"thumbnail"`
			IndexID    int    `json:"index_id"`
			IndexName  string `json:"index_name"`
		} `json:"header"`
		Data struct {
			ExtURLs           []string    `json:"ext_urls"`
			Title             string      `json:"title"`
			CreatedAt         string      `json:"created_at"`
			MemberName        string      `json:"member_name"`
			AuthorName        string      `json:"author_name"`
			PawooUserUsername string      `json:"pawoo_user_username"`
			Creator           interface{} `json:"creator"`
			Material          string      `json:"material"`
			Characters        string      `json:"characters"`
			Source            string      `json:"source"`
			EngName           string      `json:"eng_name"`
			JpName            string      `json:"jp_name"`
			Part              string      `json:"part"`
			Type              string      `json:"type"`
			Year              string      `json:"year"`
			EstTime           string      `json:"est_time"`
		} `json:"data"`
	} `json:"results"`
}

// SearchError is a non-zero status returned by SauceNAO
type SearchError struct {
	Status  int
	Message string
}

func (e *SearchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("SauceNAO devolvió %d (%s). Es un problema del servidor, inténtalo más tarde.", e.Status, e.Message)
	}
	return fmt.Sprintf("SauceNAO devolvió %d (%s)", e.Status, e.Message)
}

// Client queries SauceNAO with an API key
type Client struct {
	http   *httpx.Client
	apiKey string
}

// New creates a client. opts are passed to the HTTP client.
func New(apiKey string, opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(BaseURL), httpx.WithRateLimit(0.5, 2)}, opts...)
	return &Client{http: httpx.New("saucenao", opts...), apiKey: apiKey}
}

// Search looks up imageURL returning at most numRes results
func (c *Client) Search(ctx context.Context, imageURL string, numRes int) (*Result, error) {
	if numRes <= 0 {
		numRes = DefaultNumRes
	}
	q := url.Values{
		"output_type": {"2"},
		"api_key":     {c.apiKey},
		"test_mode":   {"1"},
		"db":          {"999"},
		"numres":      {strconv.Itoa(numRes)},
		"url":         {imageURL},
	}
	var raw rawResponse
	if err := c.http.GetJSON(ctx, "search.php", q, &raw); err != nil {
		if code := httpx.StatusCode(err); code != 0 {
			return nil, errors.WithStack(&SearchError{Status: code, Message: err.Error()})
		}
		return nil, err
	}
	if raw.Header.Status != 0 {
		return nil, errors.WithStack(&SearchError{Status: raw.Header.Status, Message: raw.Header.Message})
	}
	return convert(raw), nil
}

func convert(raw rawResponse) *Result {
	h := raw.Header
	res := &Result{
		UserID:      h.UserID.String(),
		AccountType: h.AccountType.String(),
		Limits: Limits{
			Short:          h.ShortLimit.Int(),
			Long:           h.LongLimit.Int(),
			ShortRemaining: h.ShortRemaining,
			LongRemaining:  h.LongRemaining,
		},
		Status:            h.Status,
		ResultsRequested:  h.ResultsRequested.Int(),
		Depth:             h.SearchDepth.String(),
		MinimumSimilarity: h.MinimumSimilarity,
		QueryImage:        h.QueryImage,
		ResultsReturned:   h.ResultsReturned,
	}
	for _, r := range raw.Results {
		e := Entry{
			Similarity: r.Header.Similarity,
			Thumbnail:  r.Header.Thumbnail,
			IndexID:    r.Header.IndexID,
			IndexName:  r.Header.IndexName,
			URLs:       r.Data.ExtURLs,
			Title:      r.Data.Title,
			Creator:    r.Data.Creator,
			Material:   r.Data.Material,
			Characters: r.Data.Characters,
			Source:     r.Data.Source,
			EngName:    r.Data.EngName,
			JpName:     r.Data.JpName,
			Part:       r.Data.Part,
			Type:       r.Data.Type,
			Year:       r.Data.Year,
			EstTime:    r.Data.EstTime,
		}
		switch {
		case r.Data.MemberName != "":
			e.MemberName = r.Data.MemberName
		case r.Data.AuthorName != "":
			e.MemberName = r.Data.AuthorName
		default:
			e.MemberName = r.Data.PawooUserUsername
		}
		if r.Data.CreatedAt != "" {
			if t, err := time.Parse(time.RFC3339, r.Data.CreatedAt); err == nil {
				e.CreatedAt = t
			}
		}
		res.Results = append(res.Results, e)
	}
	return res
}

// CreatorString joins the creator field, which SauceNAO sends as a string or a list
func (e Entry) CreatorString() string {
	switch v := e.Creator.(type) {
	case string:
		return v
	case []interface{}:
		out := ""
		for i, item := range v {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprint(item)
		}
		return out
	}
	return ""
}

// flex accepts JSON strings and numbers, SauceNAO mixes both for the same fields
type flex string

func (f *flex) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flex(s)
	return nil
}

func (f flex) String() string { return string(f) }

func (f flex) Int() int {
	n, _ := strconv.Atoi(string(f))
	return n
}
