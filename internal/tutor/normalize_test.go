package tutor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeFeedbackFromSections(t *testing.T) {
	raw := `{"sections":["Add a heading","Style the button","Link the script"],"isCorrect":false}`

	verdict, err := NormalizeFeedback(raw)
	require.NoError(t, err)
	require.False(t, verdict.IsCorrect)
	require.Equal(t, "1. Add a heading\n2. Style the button\n3. Link the script", verdict.FeedbackText)
}

func TestNormalizeFeedbackPadsShortSectionList(t *testing.T) {
	raw := `{"sections":["Add a heading"],"isCorrect":true}`

	verdict, err := NormalizeFeedback(raw)
	require.NoError(t, err)
	require.True(t, verdict.IsCorrect)

	lines := strings.Split(verdict.FeedbackText, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "1. Add a heading", lines[0])
	require.Contains(t, lines[1], sectionFiller)
	require.Contains(t, lines[2], sectionFiller)
}

func TestNormalizeFeedbackFromNumberedFreeText(t *testing.T) {
	raw := `{"feedback":"1. First point\n2. Second point\n3. Third point\n4. Extra point","isCorrect":false}`

	verdict, err := NormalizeFeedback(raw)
	require.NoError(t, err)
	require.Equal(t, "1. First point\n2. Second point\n3. Third point", verdict.FeedbackText)
}

func TestNormalizeFeedbackFromBullets(t *testing.T) {
	raw := `{"feedback":"- close the div tag\n- add alt text","isCorrect":false}`

	verdict, err := NormalizeFeedback(raw)
	require.NoError(t, err)
	require.Equal(t, "1. close the div tag\n2. add alt text\n3. "+sectionFiller, verdict.FeedbackText)
}

func TestNormalizeFeedbackFromSentences(t *testing.T) {
	raw := `{"feedback":"The heading looks good. The button needs a class. Remember the script tag.","isCorrect":false}`

	verdict, err := NormalizeFeedback(raw)
	require.NoError(t, err)
	require.Equal(t, "1. The heading looks good.\n2. The button needs a class.\n3. Remember the script tag.", verdict.FeedbackText)
}

func TestNormalizeFeedbackStripsEmphasisAndSentinel(t *testing.T) {
	raw := `{"sections":["Use **bold** ideas","Avoid __underscores__","Never emit [[MORE]] markers"],"isCorrect":false}`

	verdict, err := NormalizeFeedback(raw)
	require.NoError(t, err)
	require.NotContains(t, verdict.FeedbackText, "**")
	require.NotContains(t, verdict.FeedbackText, "__")
	require.NotContains(t, verdict.FeedbackText, Separator)
	require.Contains(t, verdict.FeedbackText, "Use bold ideas")
}

func TestNormalizeChatStripsReconstitutedSentinel(t *testing.T) {
	// Removing the inner token must not leave a reassembled outer one.
	raw := `{"short":"A\n\n[[M[[MORE]]ORE]]\n\nB","details":"The longer part."}`

	reply, err := NormalizeChat(raw)
	require.NoError(t, err)
	require.NotContains(t, reply.Short, Separator)

	short, details := SplitReply(reply.Text)
	require.Equal(t, reply.Short, short)
	require.Equal(t, reply.Details, details)
}

func TestSanitizeStripsCrossTokenReconstitution(t *testing.T) {
	require.NotContains(t, sanitizeText("[[MO**RE]]"), Separator)
	require.NotContains(t, sanitizeText("*[[MORE]]*"), "**")
	require.Empty(t, sanitizeText("[[M[[M[[MORE]]ORE]]ORE]]"))
}

func TestNormalizeFeedbackStripsControlCharacters(t *testing.T) {
	raw := `{"sections":["line\u0000 with\u0007 controls","ok","fine"],"isCorrect":true}`

	verdict, err := NormalizeFeedback(raw)
	require.NoError(t, err)
	require.Contains(t, verdict.FeedbackText, "line with controls")
}

func TestNormalizeFeedbackRejectsMalformedJSON(t *testing.T) {
	_, err := NormalizeFeedback(`not json at all`)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestNormalizeFeedbackRejectsMissingIsCorrect(t *testing.T) {
	_, err := NormalizeFeedback(`{"sections":["a","b","c"]}`)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestNormalizeFeedbackRejectsWrongType(t *testing.T) {
	_, err := NormalizeFeedback(`{"sections":"not an array","isCorrect":true}`)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestNormalizeFeedbackRejectsEmptyContent(t *testing.T) {
	_, err := NormalizeFeedback(`{"sections":["   ",""],"feedback":"  ","isCorrect":false}`)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestNormalizeChatComposesSentinelText(t *testing.T) {
	raw := `{"short":"Use a for loop.","detailsSections":["Declare a counter","Check the bound","Increment each pass"]}`

	reply, err := NormalizeChat(raw)
	require.NoError(t, err)
	require.Equal(t, "Use a for loop.", reply.Short)
	require.Equal(t, "1. Declare a counter\n2. Check the bound\n3. Increment each pass", reply.Details)
	require.Equal(t, reply.Short+"\n\n"+Separator+"\n\n"+reply.Details, reply.Text)
}

func TestNormalizeChatSplitRoundTrip(t *testing.T) {
	raw := `{"short":"Short answer.","details":"A longer explanation follows here."}`

	reply, err := NormalizeChat(raw)
	require.NoError(t, err)

	short, details := SplitReply(reply.Text)
	require.Equal(t, reply.Short, short)
	require.Equal(t, reply.Details, details)
}

func TestNormalizeChatRejectsEmptyShort(t *testing.T) {
	_, err := NormalizeChat(`{"short":"  \u0000 ","details":"something"}`)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestNormalizeChatRejectsMissingShort(t *testing.T) {
	_, err := NormalizeChat(`{"details":"something"}`)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestSplitReplyWithoutSentinel(t *testing.T) {
	short, details := SplitReply("just one part")
	require.Equal(t, "just one part", short)
	require.Empty(t, details)
}

func TestSanitizeNormalizesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	decomposed := "café"
	require.Equal(t, "café", sanitizeText(decomposed))
}
