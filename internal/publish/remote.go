package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// UploadProgress observes one asset's streaming upload; called with the
// running uploaded byte count as the request body is consumed.
type UploadProgress func(name string, uploaded, total int64)

// RemotePublisher uploads a release's assets to a GitHub-style releases
// API: look up the release by tag, create it if absent, then upload
// every asset that isn't already attached.
type RemotePublisher struct {
	Token    string
	Progress UploadProgress // optional
	client   *http.Client
}

// NewRemotePublisher builds a backend authenticating with token against
// the standard GitHub releases API.
func NewRemotePublisher(token string) *RemotePublisher {
	return &RemotePublisher{
		Token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type releaseResponse struct {
	UploadURL string                 `json:"upload_url"`
	HTMLURL   string                 `json:"html_url"`
	Assets    []releaseAssetResponse `json:"assets"`
}

type releaseAssetResponse struct {
	Name string `json:"name"`
}

type createReleaseRequest struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Body       string `json:"body"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

func (p *RemotePublisher) Publish(request Request) (Outcome, error) {
	ctx := context.Background()

	release, err := p.getOrCreateRelease(ctx, request)
	if err != nil {
		return Outcome{}, err
	}
	existing := make(map[string]bool, len(release.Assets))
	for _, asset := range release.Assets {
		existing[asset.Name] = true
	}

	var uploaded, skipped []string
	for _, asset := range request.Assets {
		if existing[asset.Name] {
			skipped = append(skipped, asset.Name)
			continue
		}
		if err := p.uploadAsset(ctx, release.UploadURL, asset); err != nil {
			return Outcome{}, err
		}
		uploaded = append(uploaded, asset.Name)
	}

	return Outcome{Uploaded: uploaded, Skipped: skipped, ReleaseURL: release.HTMLURL}, nil
}

func (p *RemotePublisher) getOrCreateRelease(ctx context.Context, request Request) (*releaseResponse, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/tags/%s", request.Repository, request.Tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, BackendError("building release lookup request: %s", err)
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, BackendError("github release lookup failed: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return p.createRelease(ctx, request)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, BackendError("github release lookup failed: %s", resp.Status)
	}
	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, BackendError("github release parse failed: %s", err)
	}
	return &release, nil
}

func (p *RemotePublisher) createRelease(ctx context.Context, request Request) (*releaseResponse, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases", request.Repository)
	payload := createReleaseRequest{
		TagName:    request.Tag,
		Name:       request.Name,
		Body:       request.Body,
		Draft:      false,
		Prerelease: false,
	}
	body, err := json.Marshal(&payload)
	if err != nil {
		return nil, BackendError("encoding release create payload: %s", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, BackendError("building release create request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, BackendError("github release create failed: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, BackendError("github release create failed: %s", resp.Status)
	}
	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, BackendError("github release parse failed: %s", err)
	}
	return &release, nil
}

func (p *RemotePublisher) uploadAsset(ctx context.Context, uploadURLTemplate string, asset Asset) error {
	base, _, _ := strings.Cut(uploadURLTemplate, "{")
	if base == "" {
		base = uploadURLTemplate
	}
	url := fmt.Sprintf("%s?name=%s", base, asset.Name)

	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return ioErr("failed to read asset %q: %s", asset.Path, err)
	}

	var body io.Reader = bytes.NewReader(data)
	if p.Progress != nil {
		body = &progressReader{r: body, name: asset.Name, total: int64(len(data)), cb: p.Progress}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return BackendError("building upload request: %s", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", asset.ContentType)
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return BackendError("github upload failed: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return BackendError("github upload failed: %s", resp.Status)
	}
	return nil
}

func (p *RemotePublisher) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.Token)
}

// progressReader reports the running byte count to cb as the upload body
// is consumed.
type progressReader struct {
	r        io.Reader
	name     string
	total    int64
	uploaded int64
	cb       UploadProgress
}

func (pr *progressReader) Read(buf []byte) (int, error) {
	n, err := pr.r.Read(buf)
	if n > 0 {
		pr.uploaded += int64(n)
		pr.cb(pr.name, pr.uploaded, pr.total)
	}
	return n, err
}
