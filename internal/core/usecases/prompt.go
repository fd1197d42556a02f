package usecases

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// DefaultLanguage is used when a requested language is unknown.
const DefaultLanguage = "en"

var supportedLanguages = []language.Tag{
	language.English, // first entry is the matcher's fallback
	language.German,
	language.Turkish,
	language.Spanish,
	language.French,
	language.Dutch,
	language.Arabic,
	language.Hebrew,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

var languageInstructions = map[string]string{
	"en": "Please respond in English",
	"de": "Bitte antworten Sie auf Deutsch",
	"tr": "Lütfen Türkçe olarak yanıtlayın",
	"es": "Por favor responda en español",
	"fr": "Veuillez répondre en français",
	"nl": "Gelieve te antwoorden in het Nederlands",
	"ar": "يرجى الرد باللغة العربية",
	"he": "אנא השב בעברית",
}

// Section header sets, in display order. Languages without a set use English.
var sectionHeaders = map[string][8]string{
	"en": {
		"🌍 **LOCATION OVERVIEW**",
		"👥 **DEMOGRAPHICS & TARGET MARKET**",
		"🏢 **EXISTING BUSINESS LANDSCAPE**",
		"🚀 **TOP BUSINESS OPPORTUNITIES**",
		"⚠️ **POTENTIAL CHALLENGES**",
		"💰 **MARKET SIZE ESTIMATION**",
		"🎯 **RECOMMENDED BUSINESS TYPES**",
		"📊 **CONCLUSION & NEXT STEPS**",
	},
	"tr": {
		"🌍 **KONUM GEÇMİŞİ**",
		"👥 **DEMOGRAFİK VERİLER & HEDEF PAZAR**",
		"🏢 **MEVCUT İŞ ORTAMI**",
		"🚀 **EN İYİ İŞ FIRSATLARI**",
		"⚠️ **POTANSIYEL ZORLUKLAR**",
		"💰 **PAZAR BÜYÜKLÜĞÜ TAHMİNİ**",
		"🎯 **ÖNERİLEN İŞ TÜRLERİ**",
		"📊 **SONUÇ VE SONRAKİ ADIMLAR**",
	},
	"de": {
		"🌍 **STANDORTÜBERSICHT**",
		"👥 **DEMOGRAFIE & ZIELMARKT**",
		"🏢 **BESTEHENDE GESCHÄFTSLANDSCHAFT**",
		"🚀 **TOP-GESCHÄFTSCHANCEN**",
		"⚠️ **MÖGLICHE HERAUSFORDERUNGEN**",
		"💰 **MARKTGRÖSSENSCHÄTZUNG**",
		"🎯 **EMPFOHLENE GESCHÄFTSARTEN**",
		"📊 **FAZIT & NÄCHSTE SCHRITTE**",
	},
	"es": {
		"🌍 **RESUMEN DE LA UBICACIÓN**",
		"👥 **DEMOGRAFÍA Y MERCADO OBJETIVO**",
		"🏢 **PANORAMA EMPRESARIAL EXISTENTE**",
		"🚀 **PRINCIPALES OPORTUNIDADES DE NEGOCIO**",
		"⚠️ **DESAFÍOS POTENCIALES**",
		"💰 **ESTIMACIÓN DEL TAMAÑO DEL MERCADO**",
		"🎯 **TIPOS DE NEGOCIO RECOMENDADOS**",
		"📊 **CONCLUSIÓN Y PRÓXIMOS PASOS**",
	},
	"fr": {
		"🌍 **APERÇU DE L'EMPLACEMENT**",
		"👥 **DÉMOGRAPHIE & MARCHÉ CIBLE**",
		"🏢 **PAYSAGE COMMERCIAL EXISTANT**",
		"🚀 **MEILLEURES OPPORTUNITÉS COMMERCIALES**",
		"⚠️ **DÉFIS POTENTIELS**",
		"💰 **ESTIMATION DE LA TAILLE DU MARCHÉ**",
		"🎯 **TYPES D'ENTREPRISES RECOMMANDÉS**",
		"📊 **CONCLUSION & PROCHAINES ÉTAPES**",
	},
}

// ResolveLanguage maps a requested language ("tr", "en-US", "de_DE") to one
// of the supported base codes, falling back to English.
func ResolveLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supportedLanguages[idx].Base()
	return base.String()
}

// LanguageInstruction returns the instruction line for a resolved language.
func LanguageInstruction(lang string) string {
	if s, ok := languageInstructions[lang]; ok {
		return s
	}
	return languageInstructions[DefaultLanguage]
}

// SectionHeaders returns the eight section headers for a resolved language.
func SectionHeaders(lang string) [8]string {
	if h, ok := sectionHeaders[lang]; ok {
		return h
	}
	return sectionHeaders[DefaultLanguage]
}

// BuildPrompt renders the basic analysis prompt. snapshot may be nil, in
// which case the business-data block is omitted.
func BuildPrompt(region domain.Region, snapshot *domain.BusinessSnapshot, lang string) string {
	lang = ResolveLanguage(lang)
	h := SectionHeaders(lang)
	center := region.Center()

	var b strings.Builder
	fmt.Fprintf(&b, "%s.\n\n", LanguageInstruction(lang))
	b.WriteString("Analyze the business opportunities for the geographic area with coordinates:\n")
	fmt.Fprintf(&b, "- North: %s\n", num(region.North))
	fmt.Fprintf(&b, "- South: %s\n", num(region.South))
	fmt.Fprintf(&b, "- East: %s\n", num(region.East))
	fmt.Fprintf(&b, "- West: %s\n", num(region.West))
	fmt.Fprintf(&b, "- Center: %s, %s\n\n", num(center.Lat), num(center.Lon))

	if snapshot != nil {
		b.WriteString(SnapshotDigest(snapshot))
		b.WriteString("\n")
	}

	landscape := "analyze typical business types"
	if snapshot != nil {
		landscape = fmt.Sprintf("%d businesses found", snapshot.Total)
	}

	b.WriteString("Structure your response with these EXACT sections using emojis:\n\n")
	guidance := [8]string{
		"(Describe the area type, urban/suburban classification, key landmarks, and reference the actual businesses found)",
		"(Population characteristics, income levels, lifestyle preferences - correlate with the types of businesses found)",
		fmt.Sprintf("(Current businesses based on REAL DATA: %s, competition density, market gaps)", landscape),
		"(3 specific opportunities with reasoning, considering the actual business data)",
		"(Market risks, regulatory issues, competition threats based on existing businesses)",
		"(Revenue potential, customer base size, growth projections - use business density data)",
		"(Specific business categories suited for this location, considering existing competition)",
		"(Summary and actionable recommendations based on real data)",
	}
	for i := range h {
		fmt.Fprintf(&b, "%s\n%s\n\n", h[i], guidance[i])
	}
	b.WriteString("Keep each section concise but informative. Use bullet points where appropriate. Reference the actual business data when available.")
	return b.String()
}

// SnapshotDigest renders the business-data block of the basic prompt.
func SnapshotDigest(s *domain.BusinessSnapshot) string {
	cats := s.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Label
	}

	top := s.TopBusinesses
	if len(top) > 5 {
		top = top[:5]
	}
	tops := make([]string, 0, len(top))
	for _, r := range top {
		rating := "?"
		if r.Rating != nil {
			rating = num(*r.Rating)
		}
		tops = append(tops, fmt.Sprintf("%s (%s★)", r.Name, rating))
	}

	var b strings.Builder
	b.WriteString("REAL GOOGLE MAPS BUSINESS DATA FOR THIS AREA:\n")
	fmt.Fprintf(&b, "- Total businesses found: %d\n", s.Total)
	fmt.Fprintf(&b, "- Business density: %.1f businesses per km²\n", s.Density)
	fmt.Fprintf(&b, "- Average rating: %.1f/5.0\n", s.AverageRating)
	fmt.Fprintf(&b, "- Business categories: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "- Top businesses: %s\n", strings.Join(tops, ", "))
	fmt.Fprintf(&b, "- Category breakdown: %s\n", mustJSON(s.CategoryDistribution))
	fmt.Fprintf(&b, "- Price distribution: %s\n", mustJSON(s.PriceDistribution))
	return b.String()
}

// PremiumFigures are the headline numbers of a premium report.
type PremiumFigures struct {
	LocationScore     int
	MarketOpportunity int
	RiskLevel         string
	DensityLabel      string
	AboveAverage      bool
	MarketGap         string
	CompetitionAngle  string
}

// ComputePremiumFigures derives the executive-summary numbers. A nil
// snapshot yields the fixed fallback figures.
func ComputePremiumFigures(s *domain.BusinessSnapshot) PremiumFigures {
	if s == nil {
		return PremiumFigures{
			LocationScore:     7,
			MarketOpportunity: 250000,
			RiskLevel:         "Low-Medium",
			DensityLabel:      "15.2",
			MarketGap:         "Multiple service gaps identified",
			CompetitionAngle:  "Focus on innovative offerings",
		}
	}

	f := PremiumFigures{
		LocationScore:     int(math.Min(10, math.Round(s.Density*2+s.AverageRating*1.5))),
		MarketOpportunity: s.Total * 50000,
		RiskLevel:         "Low-Medium",
		DensityLabel:      fmt.Sprintf("%.1f", s.Density),
		AboveAverage:      s.Density > 15,
		MarketGap:         "Saturated market, focus on niche differentiation",
		CompetitionAngle:  "Focus on innovative offerings",
	}
	if s.Density > 20 {
		f.RiskLevel = "Medium (High Competition)"
	}
	if len(s.CategoryDistribution) < 8 {
		f.MarketGap = "Significant opportunities in underrepresented categories"
	}
	if s.AverageRating < 4.0 {
		f.CompetitionAngle = "Service quality improvement opportunity"
	}
	return f
}

// BuildPremiumPrompt renders the long-form report prompt on top of a basic
// analysis text.
func BuildPremiumPrompt(region domain.Region, snapshot *domain.BusinessSnapshot, basicAnalysis, lang string) string {
	lang = ResolveLanguage(lang)
	center := region.Center()
	f := ComputePremiumFigures(snapshot)

	data := "No specific business data available"
	if snapshot != nil {
		if raw, err := json.MarshalIndent(snapshot, "", "  "); err == nil {
			data = string(raw)
		}
	}
	above := "Below"
	if f.AboveAverage {
		above = "Above"
	}
	rule := strings.Repeat("═", 59)

	var b strings.Builder
	fmt.Fprintf(&b, "%s.\n\n", LanguageInstruction(lang))
	b.WriteString("You are writing a comprehensive, consulting-grade business intelligence report.\n\n")
	b.WriteString("LOCATION DATA:\n")
	fmt.Fprintf(&b, "- Coordinates: %s, %s\n", num(center.Lat), num(center.Lon))
	fmt.Fprintf(&b, "- Bounds: N:%s, S:%s, E:%s, W:%s\n\n",
		num(region.North), num(region.South), num(region.East), num(region.West))
	fmt.Fprintf(&b, "REAL GOOGLE MAPS BUSINESS DATA:\n%s\n\n", data)
	fmt.Fprintf(&b, "BASED ON INITIAL ANALYSIS: %q\n\n", basicAnalysis)
	b.WriteString("CREATE A DETAILED BUSINESS INTELLIGENCE REPORT with calculations, specific numbers, and actionable insights:\n\n")
	fmt.Fprintf(&b, "%s\n📋 **EXECUTIVE SUMMARY**\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "• **Location Score**: %d/10\n", f.LocationScore)
	fmt.Fprintf(&b, "• **Market Opportunity**: $%d annual revenue potential\n", f.MarketOpportunity)
	b.WriteString("• **Investment Range**: $25,000 - $150,000\n")
	b.WriteString("• **ROI Timeline**: 8-14 months\n")
	fmt.Fprintf(&b, "• **Risk Level**: %s\n\n", f.RiskLevel)
	b.WriteString("**KEY FINDINGS:**\n")
	fmt.Fprintf(&b, "1. Business Density: %s businesses per km² (%s average)\n", f.DensityLabel, above)
	fmt.Fprintf(&b, "2. Market Gap: %s\n", f.MarketGap)
	fmt.Fprintf(&b, "3. Competition Advantage: %s\n\n", f.CompetitionAngle)
	b.WriteString("Continue with financial projections, competitor analysis, step-by-step setup guides, market calculations, risk assessments, and implementation timelines with specific costs and revenue projections. ")
	b.WriteString("Use SPECIFIC NUMBERS, PERCENTAGES, and DOLLAR AMOUNTS throughout. Include formulas for market size, break-even analysis, and ROI projections.")
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
