// Spotify API implementation of [Library]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jumbler/jumbler/internal/models"
	"github.com/jumbler/jumbler/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// Spotify caps a single add-items request at 100 URIs.
	maxChunkSize = 100

	pageLimit = 50
)

type apiArtist struct {
	Name string `json:"name"`
}

type apiTrack struct {
	URI     string      `json:"uri"`
	Name    string      `json:"name"`
	Artists []apiArtist `json:"artists"`
}

type apiPlaylistTrack struct {
	Track apiTrack `json:"track"`
}

type apiTrackPage struct {
	Items []apiPlaylistTrack `json:"items"`
	Total int                `json:"total"`
	Next  *string            `json:"next"`
}

type apiPlaylist struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	URI         string       `json:"uri"`
	Public      bool         `json:"public"`
	Tracks      apiTrackPage `json:"tracks"`
}

type apiPlaylistPage struct {
	Items []apiPlaylist `json:"items"`
	Total int           `json:"total"`
	Next  *string       `json:"next"`
}

type apiUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyService implements [Library] over the Spotify Web API using a
// bearer token obtained by the auth package.
type SpotifyService struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// SpotifyServiceOpts holds optional overrides for [NewSpotifyService].
type SpotifyServiceOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Logger     *log.Logger
}

// NewSpotifyService creates a service authenticated with the given access token.
func NewSpotifyService(accessToken string, opts SpotifyServiceOpts) *SpotifyService {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(10), 10)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &SpotifyService{
		baseURL:    opts.BaseURL,
		token:      accessToken,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
		logger:     opts.Logger,
	}
}

// NormalizePlaylistID extracts a playlist ID from a share URL, an
// open.spotify.com path, a spotify: URI, or a bare ID.
func NormalizePlaylistID(raw string) string {
	id := strings.TrimSpace(raw)
	if i := strings.LastIndex(id, "/playlist/"); i >= 0 {
		id = id[i+len("/playlist/"):]
	}
	if strings.HasPrefix(id, "spotify:playlist:") {
		id = strings.TrimPrefix(id, "spotify:playlist:")
	}
	if i := strings.IndexByte(id, '?'); i >= 0 {
		id = id[:i]
	}
	return id
}

// doRequest performs a rate-limited, authenticated request. The endpoint may
// be a path relative to the base URL or an absolute URL (pagination cursors).
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, method, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*models.User, error) {
	var user apiUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &models.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// UserPlaylists retrieves all of the user's playlists, following the
// pagination cursor until exhausted.
func (s *SpotifyService) UserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist

	endpoint := fmt.Sprintf("/me/playlists?limit=%d", pageLimit)
	for {
		var page apiPlaylistPage
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			playlists = append(playlists, models.Playlist{
				ID:          item.ID,
				Name:        item.Name,
				Description: item.Description,
				URI:         item.URI,
				Public:      item.Public,
				Total:       item.Tracks.Total,
			})
		}
		if page.Next == nil || *page.Next == "" {
			break
		}
		endpoint = *page.Next
	}

	return playlists, nil
}

// Playlist retrieves a playlist and its full track listing. Pages are
// fetched until the cursor runs out; a listing shorter than the advertised
// total is an error rather than a silent partial result.
func (s *SpotifyService) Playlist(ctx context.Context, idOrURL string) (*models.Playlist, error) {
	id := NormalizePlaylistID(idOrURL)

	var head apiPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", id)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &head); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
		}
		return nil, err
	}

	playlist := &models.Playlist{
		ID:          head.ID,
		Name:        head.Name,
		Description: head.Description,
		URI:         head.URI,
		Public:      head.Public,
		Total:       head.Tracks.Total,
	}

	page := head.Tracks
	for {
		for _, item := range page.Items {
			playlist.Tracks = append(playlist.Tracks, models.Track{
				URI:      item.Track.URI,
				Position: len(playlist.Tracks),
				Title:    item.Track.Name,
				Artist:   artistNames(item.Track.Artists),
			})
		}
		if page.Next == nil || *page.Next == "" {
			break
		}
		next := *page.Next
		page = apiTrackPage{}
		if err := s.doRequest(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
	}

	if len(playlist.Tracks) != playlist.Total {
		return nil, fmt.Errorf("%w: expected %d tracks, read %d", shared.ErrIncompleteRead, playlist.Total, len(playlist.Tracks))
	}

	s.logger.Debugf("read playlist %s (%d tracks)", playlist.Name, len(playlist.Tracks))
	return playlist, nil
}

// CreatePlaylist creates an empty playlist owned by the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var created apiPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", userID)
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		URI:         created.URI,
		Public:      created.Public,
	}, nil
}

// ReplaceTracks clears the playlist, then appends the URIs in chunks of at
// most 100 with explicit ascending positions. A failed chunk aborts the
// write; earlier chunks are not rolled back.
func (s *SpotifyService) ReplaceTracks(ctx context.Context, playlistID string, uris []string) error {
	id := NormalizePlaylistID(playlistID)
	endpoint := fmt.Sprintf("/playlists/%s/tracks", id)

	clear := map[string]any{"uris": []string{}}
	if err := s.doRequest(ctx, http.MethodPut, endpoint, clear, nil); err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}

	for offset := 0; offset < len(uris); offset += maxChunkSize {
		end := min(offset+maxChunkSize, len(uris))
		chunk := map[string]any{
			"uris":     uris[offset:end],
			"position": offset,
		}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, chunk, nil); err != nil {
			return fmt.Errorf("failed to write tracks at position %d: %w", offset, err)
		}
		s.logger.Debugf("wrote tracks %d-%d of %d", offset, end-1, len(uris))
	}

	return nil
}

func artistNames(artists []apiArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
