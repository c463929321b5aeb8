package assets

import (
	"bytes"
	"strings"
	"testing"

	"devreload/internal/reload"
)

func TestReloadJS_MatchesListenerContract(t *testing.T) {
	script := string(ReloadJS)
	for _, want := range []string{
		`"` + reload.Endpoint + `"`,
		`event.data === "` + reload.Message + `"`,
		"1000",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("reload.js missing %q", want)
		}
	}
}

func TestReloadScriptTag(t *testing.T) {
	tag := ReloadScriptTag()
	if !bytes.HasPrefix(tag, []byte("<script>")) || !bytes.HasSuffix(tag, []byte("</script>")) {
		t.Fatalf("tag = %q", tag)
	}
	if !bytes.Contains(tag, ReloadJS) {
		t.Fatal("tag does not embed the script")
	}
}

func TestDocsHTML_HasBody(t *testing.T) {
	if !bytes.Contains(DocsHTML, []byte("</body>")) {
		t.Fatal("docs page needs a closing body tag for injection")
	}
}
