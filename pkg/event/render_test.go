package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Run("empty alias map returns body unchanged", func(t *testing.T) {
		body := "# Camp Trip\n\n![photo](%image-1%)"

		assert.Equal(t, body, render(body, map[string]string{}))
		assert.Equal(t, body, render(body, nil))
	})

	t.Run("replaces alias link targets with urls", func(t *testing.T) {
		body := "# Camp Trip\n\n![photo](%image-1%)\n\n![group](%image-2%)"
		aliases := map[string]string{
			"%image-1%": "/images/11",
			"%image-2%": "/images/12",
		}

		rendered := render(body, aliases)

		assert.Equal(t, "# Camp Trip\n\n![photo](/images/11)\n\n![group](/images/12)", rendered)
	})

	t.Run("replaces every occurrence of an alias", func(t *testing.T) {
		body := "![a](%image-1%) and again ![b](%image-1%)"

		rendered := render(body, map[string]string{"%image-1%": "/images/5"})

		assert.Equal(t, "![a](/images/5) and again ![b](/images/5)", rendered)
	})

	t.Run("alias outside parentheses is left untouched", func(t *testing.T) {
		body := "the token %image-1% in plain text, but ![photo](%image-1%) as a link"

		rendered := render(body, map[string]string{"%image-1%": "/images/5"})

		assert.Equal(t, "the token %image-1% in plain text, but ![photo](/images/5) as a link", rendered)
	})

	t.Run("alias is matched literally despite regex metacharacters", func(t *testing.T) {
		body := "![photo](%image.1%) and (%imageX1%)"

		rendered := render(body, map[string]string{"%image.1%": "/images/5"})

		assert.Equal(t, "![photo](/images/5) and (%imageX1%)", rendered)
	})

	t.Run("deterministic across alias orderings", func(t *testing.T) {
		body := "![a](%image-1%) ![b](%image-10%)"
		aliases := map[string]string{
			"%image-1%":  "/images/1",
			"%image-10%": "/images/10",
		}

		first := render(body, aliases)
		for range 10 {
			assert.Equal(t, first, render(body, aliases))
		}
	})
}
