package cloudinary

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/helium876/Fetelendr/internal/domain/fete"
	"github.com/helium876/Fetelendr/internal/domain/submission"
)

// Config はCloudinary接続設定
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Storage はポスター画像のアップロードと参照解決を実装する
type Storage struct {
	client    *cld.Cloudinary
	cloudName string
	folder    string
}

var _ fete.PosterResolver = (*Storage)(nil)

// NewStorage は新しいStorageを作成する
func NewStorage(cfg Config) (*Storage, error) {
	client, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("Cloudinaryクライアントの作成に失敗: %w", err)
	}
	return &Storage{
		client:    client,
		cloudName: cfg.CloudName,
		folder:    cfg.Folder,
	}, nil
}

// Resolve はポスター参照を安定した公開画像URLに解決する
// 参照の3形態（解決済みURL・共有リンク・ファイル名）を
// それぞれの方法で処理する
func (s *Storage) Resolve(ctx context.Context, ref string) (string, error) {
	pr := ParsePosterRef(ref)

	switch pr.Kind {
	case RefResolvedURL:
		return forceHTTPS(pr.Value), nil

	case RefShareLink:
		publicID, err := extractPublicID(pr.Value)
		if err != nil {
			return "", err
		}
		return s.deliveryURL(publicID), nil

	default: // RefFilename
		return s.lookupByFilename(ctx, pr.Value)
	}
}

// lookupByFilename はフォルダ内の公開IDを検索してURLを返す
func (s *Storage) lookupByFilename(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		return "", fete.ErrPosterNotFound
	}

	publicID := strings.TrimSuffix(filename, path.Ext(filename))
	if s.folder != "" && !strings.Contains(publicID, "/") {
		publicID = s.folder + "/" + publicID
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	asset, err := s.client.Admin.Asset(ctx, admin.AssetParams{PublicID: publicID})
	if err != nil {
		return "", fmt.Errorf("アセット検索に失敗: %w", err)
	}
	if asset == nil || asset.SecureURL == "" {
		return "", fete.ErrPosterNotFound
	}
	return asset.SecureURL, nil
}

// Upload はポスター画像をアップロードして公開URLを返す
func (s *Storage) Upload(ctx context.Context, poster *submission.PosterUpload, title string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.client.Upload.Upload(ctx, poster.Content, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: posterPublicID(title),
	})
	if err != nil {
		return "", fmt.Errorf("アップロードに失敗: %w", err)
	}
	return resp.SecureURL, nil
}

func (s *Storage) deliveryURL(publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s", s.cloudName, publicID)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// posterPublicID はタイトルから衝突しない公開IDを生成する
func posterPublicID(title string) string {
	base := strings.Trim(unsafeChars.ReplaceAllString(title, "_"), "_")
	if base == "" {
		base = "poster"
	}
	return fmt.Sprintf("%s_%s", base, uuid.NewString())
}

func forceHTTPS(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = "https"
	return u.String()
}
