package entrypoint

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sitedocs/internal/config"
	"github.com/mrlokans/sitedocs/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		HTTP:     config.HTTP{Host: "127.0.0.1", Port: 0},
		Global:   config.Global{ShutdownTimeoutInSeconds: 1},
		Database: config.Database{Path: filepath.Join(dir, "sitedocs.db")},
		Media: config.Media{
			Dir:       filepath.Join(dir, "uploads"),
			URLPrefix: "/uploads",
		},
		Documentation: config.Documentation{EnableChanges: true},
	}
}

func TestNewCore(t *testing.T) {
	cfg := testConfig(t)

	core, err := NewCore(cfg)
	require.NoError(t, err)
	defer core.Close()

	_, err = os.Stat(cfg.Media.Dir)
	assert.NoError(t, err, "media dir is created")
	assert.True(t, core.Settings.ChangesEnabled())

	item := &entities.MediaItem{Title: "Intro", Slug: "intro", Kind: entities.MediaKindAttachment, URL: "https://cdn.example.com/intro.mp4"}
	require.NoError(t, core.Media.CreateMedia(item))
	require.NoError(t, core.Resolver.SetVideoSelection(item.ID))
	assert.Equal(t, "https://cdn.example.com/intro.mp4", core.Resolver.ResolveVideoURL())
}

func TestNewCore_ChangesDefaultFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Documentation.EnableChanges = false

	core, err := NewCore(cfg)
	require.NoError(t, err)
	defer core.Close()

	assert.False(t, core.Settings.ChangesEnabled())
}

func TestNewCore_URLOverrides(t *testing.T) {
	cfg := testConfig(t)
	cfg.Documentation.VideoURLOverride = "https://videos.example.com/tour.mp4"

	core, err := NewCore(cfg)
	require.NoError(t, err)
	defer core.Close()

	resolved := core.Resolver.Resolve()
	assert.Equal(t, "https://videos.example.com/tour.mp4", resolved.VideoURL)
	assert.Empty(t, resolved.PDFURL)
}

func TestResolverOptions(t *testing.T) {
	opts := ResolverOptions(config.Documentation{})
	assert.Nil(t, opts.VideoURLFilter)
	assert.Nil(t, opts.PDFURLFilter)

	opts = ResolverOptions(config.Documentation{PDFURLOverride: "https://cdn.example.com/guide.pdf"})
	assert.Nil(t, opts.VideoURLFilter)
	require.NotNil(t, opts.PDFURLFilter)
	assert.Equal(t, "https://cdn.example.com/guide.pdf", opts.PDFURLFilter("", 0))
}

func TestCSRFSecret(t *testing.T) {
	t.Run("hex secret is decoded", func(t *testing.T) {
		secret, err := csrfSecret("00ff10")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0xff, 0x10}, secret)
	})

	t.Run("non-hex secret is used raw", func(t *testing.T) {
		secret, err := csrfSecret("not hex!")
		require.NoError(t, err)
		assert.Equal(t, []byte("not hex!"), secret)
	})

	t.Run("empty secret is generated", func(t *testing.T) {
		first, err := csrfSecret("")
		require.NoError(t, err)
		second, err := csrfSecret("")
		require.NoError(t, err)

		assert.Len(t, first, 32)
		assert.NotEqual(t, hex.EncodeToString(first), hex.EncodeToString(second))
	})
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	shutdownCalled := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, gin.New(), cfg, func(context.Context) { close(shutdownCalled) })
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	<-shutdownCalled
}
