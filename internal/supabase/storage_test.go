package supabase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"tintura-sst/internal/supabase"
)

func TestObjectPath(t *testing.T) {
	p := supabase.ObjectPath("orders", "../Tech Pack (v2).pdf")
	assert.True(t, strings.HasPrefix(p, "orders/"))
	assert.True(t, strings.HasSuffix(p, "-Tech_Pack_v2_.pdf"), p)
	assert.NotContains(t, p, "..")

	assert.True(t, strings.HasSuffix(supabase.ObjectPath("materials", "..."), "-file"))
}

func TestStorageClient_PublicURL(t *testing.T) {
	s := supabase.NewStorageClient("https://example.supabase.co/", "key", "attachments")
	assert.Equal(t,
		"https://example.supabase.co/storage/v1/object/public/attachments/orders/a.pdf",
		s.PublicURL("orders/a.pdf"))
}

func TestStorageClient_UploadHonorsContext(t *testing.T) {
	s := supabase.NewStorageClient("http://127.0.0.1:0", "key", "attachments")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Upload(ctx, "orders", "a.pdf", "application/pdf", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
