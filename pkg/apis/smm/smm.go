// Package smm scrapes level and maker pages from Super Mario Maker Bookmark.
package smm

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PuerkitoBio/goquery"
)

// BaseURL is the bookmark site
const BaseURL = "https://supermariomakerbookmark.nintendo.net"

// IconURL is the bookmark favicon used in embed footers
const IconURL = BaseURL + "/assets/favicon/icon76-08f927f066250b84f628e92e0b94f58d.png"

const (
	ErrLevelNotFound = errors.Sentinel("no encontré ese nivel")
	ErrMakerNotFound = errors.Sentinel("no encontré a ese creador")
)

// typography reads the digits drawn with "typography-N" sprites. sep, when
// set, names the sprite used as separator and splits the result.
func typography(s *goquery.Selection, sep string) []string {
	parts := []string{""}
	s.Each(func(_ int, t *goquery.Selection) {
		switch ch := sprite(t); {
		case isDigit(ch):
			parts[len(parts)-1] += ch
		case sep != "" && ch == sep:
			parts = append(parts, "")
		}
	})
	return parts
}

func typographyInt(s *goquery.Selection) int {
	n, _ := strconv.Atoi(typography(s, "")[0])
	return n
}

// User is a player linked from a level page
type User struct {
	Name  string
	URL   string
	Image string
}

// Level is a course page
type Level struct {
	URL        string
	Title      string
	Difficulty string
	Tag        string
	Preview    string
	Map        string
	Creator    User
	BestPlayer *User
	BestTime   string
	FirstClear *User
	Stars      int
	Players    int
	Shares     int
	Clears     int
	Attempts   int
	ClearRate  float64
	GameSkin   string
	CreatedAt  time.Time
}

var gameSkins = map[string]string{
	"common_gs_sb":  "Super Mario Bros.",
	"common_gs_sb3": "Super Mario Bros. 3",
	"common_gs_sw":  "Super Mario World",
	"common_gs_sbu": "New Super Mario Bros. U",
}

// Color is the embed color for the difficulty
func (l *Level) Color() int {
	switch l.Difficulty {
	case "Easy":
		return 0x28AD8A
	case "Normal":
		return 0x2691BC
	case "Expert":
		return 0xEA348B
	case "Super Expert":
		return 0xFF4545
	}
	return 0xF9CF00
}

func linkedUser(doc *goquery.Document, wrapper string) *User {
	link := doc.Find(wrapper + " > .mii-wrapper > .link").First()
	if link.Length() == 0 {
		return nil
	}
	return &User{
		Name:  strings.TrimSpace(doc.Find(wrapper + " > .user-info > .name").First().Text()),
		URL:   BaseURL + link.AttrOr("href", ""),
		Image: link.Find("img").AttrOr("src", ""),
	}
}

// parseCreated reads "N hours ago" style dates and MM/DD/YYYY ones
func parseCreated(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "ago") {
		n, _ := strconv.Atoi(strings.Fields(s)[0])
		switch {
		case strings.Contains(s, "hour"):
			return now.Add(-time.Duration(n) * time.Hour)
		case strings.Contains(s, "day"):
			return now.AddDate(0, 0, -n)
		case strings.Contains(s, "min"):
			return now.Add(-time.Duration(n) * time.Minute)
		}
		return now
	}
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseLevel reads a course page. now resolves relative creation dates.
func ParseLevel(doc *goquery.Document, now time.Time) *Level {
	l := &Level{
		URL:        doc.Find(`meta[property="og:url"]`).AttrOr("content", ""),
		Difficulty: strings.TrimSpace(doc.Find(".course-header").First().Text()),
		Title:      strings.TrimSpace(doc.Find(".course-title").First().Text()),
		Preview:    doc.Find(".course-image > .course-image").AttrOr("src", ""),
		Map:        doc.Find(".course-image-full").AttrOr("src", ""),
		Creator: User{
			Name:  strings.TrimSpace(doc.Find(".creator-info > .name").First().Text()),
			URL:   BaseURL + doc.Find(".mii-wrapper.creator > .link").AttrOr("href", ""),
			Image: doc.Find(".mii-wrapper.creator > .link > img").AttrOr("src", ""),
		},
		BestPlayer: linkedUser(doc, ".fastest-time-wrapper > .user-wrapper"),
		FirstClear: linkedUser(doc, ".first-user > .body > .user-wrapper"),
		Stars:      typographyInt(doc.Find(".liked-count > .typography")),
		Players:    typographyInt(doc.Find(".played-count > .typography")),
		Shares:     typographyInt(doc.Find(".shared-count > .typography")),
		CreatedAt:  parseCreated(doc.Find(".created_at").First().Text(), now),
	}
	if tag := strings.TrimSpace(doc.Find(".course-meta-info > .course-tag").First().Text()); tag != "---" {
		l.Tag = tag
	}
	if tried := typography(doc.Find(".tried-count > .typography"), "slash"); len(tried) == 2 {
		l.Clears, _ = strconv.Atoi(tried[0])
		l.Attempts, _ = strconv.Atoi(tried[1])
	}
	if classes := strings.Fields(doc.Find(".gameskin").AttrOr("class", "")); len(classes) > 2 {
		l.GameSkin = gameSkins[classes[2]]
	}

	var rate, best strings.Builder
	doc.Find(".clear-rate > .typography").Each(func(_ int, t *goquery.Selection) {
		switch ch := sprite(t); {
		case isDigit(ch):
			rate.WriteString(ch)
		case ch == "second":
			rate.WriteByte('.')
		}
	})
	l.ClearRate, _ = strconv.ParseFloat(rate.String(), 64)
	doc.Find(".fastest-time-wrapper > .clear-time > .typography").Each(func(_ int, t *goquery.Selection) {
		switch ch := sprite(t); {
		case isDigit(ch):
			best.WriteString(ch)
		case ch == "minute":
			best.WriteByte(':')
		case ch == "second":
			best.WriteByte('.')
		}
	})
	l.BestTime = best.String()
	return l
}

func sprite(t *goquery.Selection) string {
	classes := strings.Fields(t.AttrOr("class", ""))
	if len(classes) < 2 {
		return ""
	}
	return strings.TrimPrefix(classes[1], "typography-")
}

func isDigit(s string) bool { return len(s) == 1 && s[0] >= '0' && s[0] <= '9' }

// Maker is a profile page
type Maker struct {
	URL     string
	Name    string
	Image   string
	Country string
	Stars   int
	Medals  int
	Uploads int

	EasyClears        int
	NormalClears      int
	ExpertClears      int
	SuperExpertClears int

	CoursesPlayed  int
	CoursesCleared int
	TotalPlays     int
	LivesLost      int
}

// tableValue reads the number drawn next to the profile table label
func tableValue(doc *goquery.Document, label string) int {
	cell := doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == label
	}).First()
	if cell.Length() == 0 {
		return 0
	}
	return typographyInt(cell.Next().Find(".typography"))
}

// ParseMaker reads a profile page
func ParseMaker(doc *goquery.Document) *Maker {
	m := &Maker{
		URL:     doc.Find(`meta[property="og:url"]`).AttrOr("content", ""),
		Name:    strings.TrimSpace(doc.Find(".user-info > .name").First().Text()),
		Image:   doc.Find(".mii").AttrOr("src", ""),
		Stars:   typographyInt(doc.Find(".star > .liked-count > .typography")),
		Uploads: typographyInt(doc.Find(".user-courses-wrapper > .typography")),

		EasyClears:        tableValue(doc, "Easy clears"),
		NormalClears:      tableValue(doc, "Normal clears"),
		ExpertClears:      tableValue(doc, "Expert clears"),
		SuperExpertClears: tableValue(doc, "Super Expert clears"),
		CoursesPlayed:     tableValue(doc, "Courses played"),
		CoursesCleared:    tableValue(doc, "Courses cleared"),
		TotalPlays:        tableValue(doc, "Total plays"),
		LivesLost:         tableValue(doc, "Lives lost"),
	}
	if classes := strings.Fields(doc.Find(".user-info > .flag").AttrOr("class", "")); len(classes) > 1 {
		m.Country = strings.ToLower(classes[1])
	}
	if count := doc.Find(".medal-count > .typography"); count.Length() > 0 {
		m.Medals = typographyInt(count)
	} else {
		doc.Find(".medal.bg-image").Each(func(_ int, s *goquery.Selection) {
			if classes := strings.Fields(s.AttrOr("class", "")); len(classes) > 2 && classes[2] != "profile_icon_medal_non" {
				m.Medals++
			}
		})
	}
	return m
}

// Client fetches bookmark pages
type Client struct {
	http *httpx.Client
	now  func() time.Time
}

// New creates a client. opts are passed to the HTTP client.
func New(opts ...httpx.Option) *Client {
	opts = append([]httpx.Option{httpx.WithBaseURL(BaseURL)}, opts...)
	return &Client{http: httpx.New("smm", opts...), now: time.Now}
}

func (c *Client) page(ctx context.Context, path string, notFound error) (*goquery.Document, error) {
	body, err := c.http.GetBytes(ctx, path, nil)
	if httpx.IsNotFound(err) {
		return nil, errors.WithStack(notFound)
	}
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	return doc, errors.WrapIf(err, "leer página")
}

// Level loads a course by its ID
func (c *Client) Level(ctx context.Context, id string) (*Level, error) {
	doc, err := c.page(ctx, "courses/"+strings.TrimSpace(id), ErrLevelNotFound)
	if err != nil {
		return nil, err
	}
	return ParseLevel(doc, c.now().UTC()), nil
}

// Maker loads a profile by its Nintendo Network ID
func (c *Client) Maker(ctx context.Context, id string) (*Maker, error) {
	doc, err := c.page(ctx, "profile/"+strings.TrimSpace(id), ErrMakerNotFound)
	if err != nil {
		return nil, err
	}
	return ParseMaker(doc), nil
}
