// Package services – BranchService
//
// BranchService finds a bank's branches around a point by querying the
// OpenStreetMap Overpass API. The bank's display name is reduced to its
// distinctive word (dropping the "bank" and "gharz-al-hasaneh" prefixes) and
// used as a name regex against amenity=bank nodes and ways. Successful
// answers are cached per bank and rounded coordinates.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vamgard/vamgard-backend/internal/cache"
	"github.com/vamgard/vamgard-backend/internal/repo"
	"github.com/vamgard/vamgard-backend/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultOverpassURL is the public Overpass interpreter endpoint.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

const maxOverpassBody = 8 << 20

// Branch is one bank branch found on the map.
type Branch struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address *string `json:"address"`
}

// BranchService looks up nearby branches.
type BranchService struct {
	DB       *gorm.DB
	Client   *http.Client
	URL      string
	RadiusM  int
	Cache    cache.Cache
	CacheTTL time.Duration
}

// NewBranchService constructs a BranchService. A nil cache disables caching.
func NewBranchService(db *gorm.DB, overpassURL string, timeout time.Duration, radiusM int, c cache.Cache, ttl time.Duration) *BranchService {
	if overpassURL == "" {
		overpassURL = DefaultOverpassURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if radiusM <= 0 {
		radiusM = 5000
	}
	return &BranchService{
		DB:       db,
		Client:   &http.Client{Timeout: timeout},
		URL:      overpassURL,
		RadiusM:  radiusM,
		Cache:    c,
		CacheTTL: ttl,
	}
}

var branchNamePrefixes = strings.NewReplacer(
	"بانک ", "",
	"قرض‌الحسنه ", "",
)

// BranchSearchName derives the name fragment matched against map data.
func BranchSearchName(bankName string) string {
	n := branchNamePrefixes.Replace(utils.NormalizeText(bankName))
	n = strings.TrimSpace(n)
	if i := strings.IndexByte(n, ' '); i >= 0 {
		n = n[:i]
	}
	return n
}

// overpassEscape escapes a value placed inside a double-quoted Overpass string.
func overpassEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// OverpassQuery builds the nodes+ways query for name around (lat, lng).
func OverpassQuery(name string, lat, lng float64, radiusM int) string {
	around := fmt.Sprintf("(around:%d,%s,%s)", radiusM,
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lng, 'f', -1, 64))
	sel := fmt.Sprintf(`["amenity"="bank"]["name"~"%s"]`, overpassEscape(name))
	return "[out:json][timeout:10];\n(\n" +
		"  node" + sel + around + ";\n" +
		"  way" + sel + around + ";\n" +
		");\nout center body;"
}

type overpassResponse struct {
	Elements []struct {
		Lat    *float64 `json:"lat"`
		Lon    *float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// parseBranches maps Overpass elements to branches. Nodes carry lat/lon,
// ways carry a center; elements without both coordinates are dropped.
func parseBranches(body []byte, fallbackName string) ([]Branch, error) {
	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	out := make([]Branch, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		var lat, lng *float64
		if el.Lat != nil {
			lat = el.Lat
		} else if el.Center != nil {
			lat, lng = &el.Center.Lat, &el.Center.Lon
		}
		if el.Lon != nil {
			lng = el.Lon
		}
		if lat == nil || lng == nil {
			continue
		}
		b := Branch{Name: fallbackName, Lat: *lat, Lng: *lng}
		if n, ok := el.Tags["name"]; ok {
			b.Name = n
		}
		if a, ok := el.Tags["addr:street"]; ok {
			a := a
			b.Address = &a
		}
		out = append(out, b)
	}
	return out, nil
}

// Nearby returns branches of the bank (active or not) around lat/lng.
func (s *BranchService) Nearby(ctx context.Context, slug string, lat, lng float64) ([]Branch, error) {
	tr := otel.Tracer("services/BranchService")
	ctx, span := tr.Start(ctx, "Nearby",
		trace.WithAttributes(
			attribute.String("bank.slug", slug),
			attribute.Float64("lat", lat),
			attribute.Float64("lng", lng),
		),
	)
	defer span.End()

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidCoordinates
	}
	bank, err := repo.GetBankBySlug(ctx, s.DB, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("branches:%s:%.3f:%.3f", slug, lat, lng)
	if s.Cache != nil {
		var cached []Branch
		if cache.GetJSON(ctx, s.Cache, key, &cached) {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	branches, err := s.query(ctx, BranchSearchName(bank.Name), bank.Name, lat, lng)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if s.Cache != nil {
		cache.SetJSON(ctx, s.Cache, key, branches, s.CacheTTL)
	}
	return branches, nil
}

func (s *BranchService) query(ctx context.Context, name, fallback string, lat, lng float64) ([]Branch, error) {
	form := url.Values{"data": {OverpassQuery(name, lat, lng, s.RadiusM)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBranchLookup, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBranchLookup, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrBranchUpstream, res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxOverpassBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBranchLookup, err)
	}
	branches, err := parseBranches(body, fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBranchLookup, err)
	}
	return branches, nil
}
