// Package music serves the workout playlist shown next to the session.
package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/2beens/gymcoach/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	playlistCacheExpire = 10 * 60
	megabyte            = 1024 * 1024
	// freecache caps entries at 1/1024 of its size, a 50 track playlist needs ~15KB
	playlistCacheSize = 64 * megabyte
	maxTracks         = 50
)

var ErrNotConfigured = errors.New("workout playlist not configured")

type Track struct {
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	DurationSec int      `json:"duration_sec"`
	URL         string   `json:"url,omitempty"`
}

type Playlist struct {
	ID       string  `json:"id"`
	EmbedURL string  `json:"embed_url"`
	Tracks   []Track `json:"tracks"`
}

type Service struct {
	client     *spotify.Client
	playlistID string
	cache      *freecache.Cache
}

type ServiceParams struct {
	ClientID     string
	ClientSecret string
	PlaylistID   string
	// HTTPClient is the base transport for the token and api calls.
	HTTPClient *http.Client
	// BaseURL overrides the spotify api url.
	BaseURL string
}

// NewService returns a service that reports ErrNotConfigured when the
// spotify credentials or the playlist are missing.
func NewService(ctx context.Context, params ServiceParams) *Service {
	s := &Service{
		playlistID: params.PlaylistID,
		cache:      freecache.NewCache(playlistCacheSize),
	}
	if params.ClientID == "" || params.ClientSecret == "" || params.PlaylistID == "" {
		log.Debugln("spotify credentials or playlist id missing, workout music disabled")
		return s
	}

	if params.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, params.HTTPClient)
	}
	creds := &clientcredentials.Config{
		ClientID:     params.ClientID,
		ClientSecret: params.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	var opts []spotify.ClientOption
	if params.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(params.BaseURL))
	}
	s.client = spotify.New(creds.Client(ctx), opts...)
	return s
}

// newServiceWithClient is used by tests to point at a fake api.
func newServiceWithClient(client *spotify.Client, playlistID string) *Service {
	return &Service{
		client:     client,
		playlistID: playlistID,
		cache:      freecache.NewCache(playlistCacheSize),
	}
}

func (s *Service) Playlist(ctx context.Context) (_ *Playlist, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "music.playlist")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.client == nil {
		return nil, ErrNotConfigured
	}

	cacheKey := []byte("playlist::" + s.playlistID)
	if cached, err := s.cache.Get(cacheKey); err == nil {
		var p Playlist
		if err := json.Unmarshal(cached, &p); err == nil {
			return &p, nil
		}
	}

	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(s.playlistID), spotify.Limit(maxTracks))
	if err != nil {
		return nil, fmt.Errorf("get playlist items: %w", err)
	}

	p := &Playlist{
		ID:       s.playlistID,
		EmbedURL: "https://open.spotify.com/embed/playlist/" + s.playlistID,
		Tracks:   make([]Track, 0, len(page.Items)),
	}
	for _, item := range page.Items {
		t := item.Track.Track
		if t == nil {
			// podcast episodes
			continue
		}
		artists := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, a.Name)
		}
		p.Tracks = append(p.Tracks, Track{
			Name:        t.Name,
			Artists:     artists,
			Album:       t.Album.Name,
			DurationSec: int(t.Duration) / 1000,
			URL:         t.ExternalURLs["spotify"],
		})
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(cacheKey, raw, playlistCacheExpire); err != nil {
			log.Errorf("cache workout playlist: %s", err)
		}
	}

	return p, nil
}
