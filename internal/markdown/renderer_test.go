package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("# Reset VPN\n\nRun `vpn reset` then **reboot**.")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="reset-vpn">Reset VPN</h1>`)
	assert.Contains(t, out, "<code>vpn reset</code>")
	assert.Contains(t, out, "<strong>reboot</strong>")
}

func TestRender_StripsScripts(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("hello <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}
