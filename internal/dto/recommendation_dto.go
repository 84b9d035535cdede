package dto

type RecommendedBookResponse struct {
	Id           int      `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Cover        string   `json:"cover"`
	Genres       string   `json:"genres"`
	Pacing       string   `json:"pacing,omitempty"`
	Tone         string   `json:"tone,omitempty"`
	Themes       []string `json:"themes,omitempty"`
	MoodTags     []string `json:"mood_tags,omitempty"`
	Score        float64  `json:"score"`
	Availability string   `json:"availability"`
}

type RecommendationsResponse struct {
	Personalized bool                      `json:"personalized"`
	Books        []RecommendedBookResponse `json:"books"`
}

type FacetResponse struct {
	Facet string   `json:"facet"`
	Tags  []string `json:"tags"`
}
