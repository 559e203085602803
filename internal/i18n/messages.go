package i18n

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ==================== 提示键 ====================
// 以英文原文作为 key，未翻译时直接输出英文

const (
	NoticeLocationRequired  = "Location required."
	NoticeFieldsRequired    = "All fields required."
	NoticeMaxPhotos         = "Maximum %d photos allowed."
	NoticeOnlyMorePhotos    = "Only %d more photo(s) can be added."
	NoticeCreating          = "Creating trailer..."
	NoticeUpdating          = "Updating trailer..."
	NoticeCreated           = "Trailer created!"
	NoticeUpdated           = "Trailer updated!"
	NoticeOperationFailed   = "Operation failed"
	NoticeSomethingWrong    = "Something went wrong"
	NoticeResolutionFailed  = "Could not load place details."
	NoticeInvalidValue      = "Invalid value for %s."
	NoticeInvalidDay        = "Day %d is not in this month."
	NoticeImageNotFound     = "Image not found."
	NoticeListingNotFound   = "Listing not found."
	NoticeEditorNotFound    = "Editor session not found."
	NoticeDeleted           = "Trailer deleted."
	NoticeFetchListingsFail = "Could not load your trailers."
	NoticeImageTooLarge     = "Image %s is larger than %d MB."
	NoticeInvalidUpload     = "Upload could not be read."
)

// ==================== 语言 ====================

// Supported 支持的语言，首项为默认语言
var Supported = []language.Tag{language.French, language.English}

var matcher = language.NewMatcher(Supported)

// ParseLocale 解析语言代码或 Accept-Language，无法匹配时返回默认语言
func ParseLocale(s string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// ==================== 文案 ====================

func init() {
	fr := language.French
	set := func(key, msg string) {
		_ = message.SetString(fr, key, msg)
	}

	set(NoticeLocationRequired, "Emplacement requis.")
	set(NoticeFieldsRequired, "Tous les champs sont obligatoires.")
	set(NoticeMaxPhotos, "Maximum %d photos autorisées.")
	set(NoticeOnlyMorePhotos, "Seulement %d photo(s) de plus peuvent être ajoutées.")
	set(NoticeCreating, "Création de la remorque...")
	set(NoticeUpdating, "Mise à jour de la remorque...")
	set(NoticeCreated, "Remorque créée !")
	set(NoticeUpdated, "Remorque mise à jour !")
	set(NoticeOperationFailed, "Échec de l'opération")
	set(NoticeSomethingWrong, "Une erreur s'est produite")
	set(NoticeResolutionFailed, "Impossible de charger les détails du lieu.")
	set(NoticeInvalidValue, "Valeur invalide pour %s.")
	set(NoticeInvalidDay, "Le jour %d n'existe pas dans ce mois.")
	set(NoticeImageNotFound, "Image introuvable.")
	set(NoticeListingNotFound, "Annonce introuvable.")
	set(NoticeEditorNotFound, "Session d'édition introuvable.")
	set(NoticeDeleted, "Remorque supprimée.")
	set(NoticeFetchListingsFail, "Impossible de charger vos remorques.")
	set(NoticeImageTooLarge, "L'image %s dépasse %d Mo.")
	set(NoticeInvalidUpload, "Le fichier envoyé est illisible.")

	en := language.English
	for _, key := range []string{
		NoticeLocationRequired, NoticeFieldsRequired, NoticeMaxPhotos, NoticeOnlyMorePhotos,
		NoticeCreating, NoticeUpdating, NoticeCreated, NoticeUpdated, NoticeOperationFailed,
		NoticeSomethingWrong, NoticeResolutionFailed, NoticeInvalidValue, NoticeInvalidDay,
		NoticeImageNotFound, NoticeListingNotFound, NoticeEditorNotFound, NoticeDeleted,
		NoticeFetchListingsFail, NoticeImageTooLarge, NoticeInvalidUpload,
	} {
		_ = message.SetString(en, key, key)
	}
}

// Translate 按语言渲染提示
func Translate(tag language.Tag, key string, args ...interface{}) string {
	return message.NewPrinter(tag).Sprintf(key, args...)
}

var monthNames = map[language.Tag][12]string{
	language.English: {"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	language.French: {"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
}

var weekdayNames = map[language.Tag][7]string{
	language.English: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	language.French:  {"dim", "lun", "mar", "mer", "jeu", "ven", "sam"},
}

// MonthName 月份名称
func MonthName(tag language.Tag, m time.Month) string {
	names, ok := monthNames[tag]
	if !ok {
		names = monthNames[language.English]
	}
	return names[m-1]
}

// WeekdayNames 日历表头（周日开头）
func WeekdayNames(tag language.Tag) [7]string {
	names, ok := weekdayNames[tag]
	if !ok {
		return weekdayNames[language.English]
	}
	return names
}
