package storage

import "testing"

func TestGetPublicURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		want    string
	}{
		{
			"bare host",
			"https://cdn.example.com",
			"scorecards/7/1719856800.jpg",
			"https://cdn.example.com/scorecards/7/1719856800.jpg",
		},
		{
			"base with path, no trailing slash",
			"https://cdn.example.com/clubtrack",
			"scorecards/7/1719856800.jpg",
			"https://cdn.example.com/clubtrack/scorecards/7/1719856800.jpg",
		},
		{
			"base with trailing slash",
			"https://cdn.example.com/clubtrack/",
			"scorecards/7/1719856800.jpg",
			"https://cdn.example.com/clubtrack/scorecards/7/1719856800.jpg",
		},
		{
			"leading slash on key",
			"https://cdn.example.com",
			"/scorecards/7/1719856800.jpg",
			"https://cdn.example.com/scorecards/7/1719856800.jpg",
		},
		{
			"empty key",
			"https://cdn.example.com",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &cloudflareR2Uploader{publicBaseURL: tt.baseURL}
			if got := u.GetPublicURL(tt.key); got != tt.want {
				t.Errorf("GetPublicURL(%q) with base %q = %q, want %q", tt.key, tt.baseURL, got, tt.want)
			}
		})
	}
}

func TestGetPublicURLWithoutBase(t *testing.T) {
	u := &cloudflareR2Uploader{}
	if got := u.GetPublicURL("scorecards/7/x.jpg"); got != "" {
		t.Errorf("expected empty URL without a configured base, got %q", got)
	}
}

func TestNewCloudflareR2UploaderValidation(t *testing.T) {
	incomplete := []CloudflareR2UploaderConfig{
		{},
		{AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret", BucketName: "bucket"},
		{AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret", PublicBaseURL: "https://cdn.example.com"},
	}
	for i, cfg := range incomplete {
		if _, err := NewCloudflareR2Uploader(cfg); err == nil {
			t.Errorf("config %d: expected an error for incomplete configuration", i)
		}
	}
}
