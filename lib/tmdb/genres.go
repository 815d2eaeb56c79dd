package tmdb

// genreNames maps the provider's published numeric genre ids to their labels,
// covering both the movie and TV genre lists.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
	10759: "Action & Adventure",
	10762: "Kids",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
}

// GenreName resolves a provider genre id to its label. Returns "" for ids
// outside the published lists.
func GenreName(id int) string {
	return genreNames[id]
}

// GenreIDsForLabels resolves genre labels to provider ids, skipping labels
// the provider does not publish.
func GenreIDsForLabels(labels []string) []int {
	var ids []int
	for _, label := range labels {
		for id, name := range genreNames {
			if name == label {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}
