package ai

import (
	"fmt"
	"regexp"
	"strings"
)

// Language selects the prompt locale for analysis.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
)

// NormalizeLanguage maps an arbitrary tag onto a supported language.
// Only "tr" selects Turkish; everything else resolves to English.
func NormalizeLanguage(tag string) Language {
	if Language(tag) == LanguageTurkish {
		return LanguageTurkish
	}
	return LanguageEnglish
}

const analysisPromptEN = `Act as an empathetic and insightful dream analyst based on Jungian psychology.
Analyze the following dream provided by the user.

Input:
- Dream Content: %s

Instructions:
1. If the input is meaningless or gibberish, return only 'Analysis Failed'.
2. Do NOT ask questions.
3. Structure your response in 3 distinct paragraphs (use double line breaks between them):
   - Paragraph 1: The Core Theme. Briefly explain the emotional atmosphere and the central meaning.
   - Paragraph 2: Symbol Decoding. Analyze specific symbols in the dream. **Bold** the key symbols and explain what they represent psychologically.
   - Paragraph 3: Actionable Insight. Connect this dream to potential waking life situations and offer a gentle suggestion or reflection.

Tone: Professional yet warm, insightful, and clear.`

const analysisPromptTR = `Jungiyen psikolojiye dayanan, empatik ve anlayışlı bir rüya analisti olarak hareket et.
Kullanıcı tarafından sağlanan aşağıdaki rüyayı analiz et.

Girdi:
- Rüya İçeriği: %s

Talimatlar:
1. Girdi anlamsızsa veya saçmaysa, sadece 'Analiz Yapılamadı' dön.
2. Soru SORMA.
3. Yanıtını 3 ayrı paragrafa ayır (aralarında çift satır sonu kullan):
   - Paragraf 1: Temel Tema. Duygusal atmosferi ve merkezi anlamı kısaca açıkla.
   - Paragraf 2: Sembol Çözümleme. Rüyadaki belirli sembolleri analiz et. Anahtar sembolleri **kalın** yap ve psikolojik olarak neyi temsil ettiklerini açıkla.
   - Paragraf 3: Uygulanabilir İçgörü. Bu rüyayı gerçek hayat durumlarıyla ilişkilendir ve nazik bir öneri veya yansıma sun.

Üslup: Profesyonel, sıcak, anlayışlı ve net.`

// AnalysisPrompt builds the language-specific instruction template.
func AnalysisPrompt(lang Language, content string) string {
	if lang == LanguageTurkish {
		return fmt.Sprintf(analysisPromptTR, content)
	}
	return fmt.Sprintf(analysisPromptEN, content)
}

// FallbackAnalysis returns the localized text stored when the model produced
// no usable analysis. A dream is never persisted with an empty analysis.
func FallbackAnalysis(lang Language) string {
	if lang == LanguageTurkish {
		return "Analiz yapılamadı"
	}
	return "Analysis could not be performed"
}

// failedSentinel is the fixed string the prompt instructs the model to emit
// for meaningless input.
func failedSentinel(lang Language) string {
	if lang == LanguageTurkish {
		return "Analiz Yapılamadı"
	}
	return "Analysis Failed"
}

// disallowed matches every character outside the allow-list: ASCII letters
// and digits, Turkish accented letters, basic punctuation and whitespace.
var disallowed = regexp.MustCompile(`[^a-zA-Z0-9çğıöşüÇĞİÖŞÜ\s.,!?-]`)

// sanitize strips characters outside the allow-list from model output.
func sanitize(text string) string {
	return disallowed.ReplaceAllString(text, "")
}

// classify applies the shared post-processing: sanitize the raw model output
// and detect the localized "failed" sentinel.
func classify(raw string, lang Language) (string, error) {
	if raw == "" {
		return "", nil
	}
	cleaned := sanitize(raw)
	if strings.TrimSpace(cleaned) == failedSentinel(lang) {
		return "", ErrRejected
	}
	return cleaned, nil
}
