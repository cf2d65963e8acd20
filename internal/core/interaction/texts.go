package interaction

import "golang.org/x/text/language"

// TextKey names a fixed user-facing text.
type TextKey string

const (
	TextProcessing    TextKey = "processing"
	TextLegacyButton  TextKey = "legacy_button"
	TextMissingConfig TextKey = "missing_config"
	TextUnknownButton TextKey = "unknown_button"
)

var supportedLocales = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.BrazilianPortuguese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

var texts = map[language.Tag]map[TextKey]string{
	language.English: {
		TextProcessing:    "processing ...",
		TextLegacyButton:  "This button was created by an older version and is no longer supported. Please create a new one.",
		TextMissingConfig: "The configuration for this button could not be found. Please create a new one.",
		TextUnknownButton: "This button is not recognized. Please create a new one.",
	},
	language.German: {
		TextProcessing:    "wird verarbeitet ...",
		TextLegacyButton:  "Dieser Button stammt aus einer älteren Version und wird nicht mehr unterstützt. Bitte erstelle einen neuen.",
		TextMissingConfig: "Die Konfiguration für diesen Button wurde nicht gefunden. Bitte erstelle einen neuen.",
		TextUnknownButton: "Dieser Button ist unbekannt. Bitte erstelle einen neuen.",
	},
	language.French: {
		TextProcessing:    "traitement ...",
		TextLegacyButton:  "Ce bouton a été créé par une ancienne version et n'est plus pris en charge. Veuillez en créer un nouveau.",
		TextMissingConfig: "La configuration de ce bouton est introuvable. Veuillez en créer un nouveau.",
		TextUnknownButton: "Ce bouton n'est pas reconnu. Veuillez en créer un nouveau.",
	},
	language.BrazilianPortuguese: {
		TextProcessing:    "processando ...",
		TextLegacyButton:  "Este botão foi criado por uma versão antiga e não é mais suportado. Por favor, crie um novo.",
		TextMissingConfig: "A configuração deste botão não foi encontrada. Por favor, crie um novo.",
		TextUnknownButton: "Este botão não é reconhecido. Por favor, crie um novo.",
	},
}

// MatchLocale returns the supported locale closest to locale, English when
// nothing matches or locale does not parse.
func MatchLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, _ := localeMatcher.Match(tag)
	return supportedLocales[idx]
}

// Text returns the fixed text for key in the locale closest to locale.
func Text(locale string, key TextKey) string {
	return texts[MatchLocale(locale)][key]
}

// ValidLocale reports whether locale is a well-formed BCP 47 tag.
func ValidLocale(locale string) bool {
	_, err := language.Parse(locale)
	return err == nil
}
