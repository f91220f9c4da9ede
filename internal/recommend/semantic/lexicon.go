// Societyrec - Student Society Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/societyrec

package semantic

// Domain categories recognized in society descriptions.
const (
	Academic     = "academic"
	Arts         = "arts"
	Music        = "music"
	Technology   = "technology"
	Sports       = "sports"
	Gaming       = "gaming"
	Cultural     = "cultural"
	Religious    = "religious"
	Volunteering = "volunteering"
	Business     = "business"
	Science      = "science"
	Health       = "health"
	Media        = "media"
	Politics     = "politics"
	Environment  = "environment"
	Social       = "social"
)

// Activity types, a second and smaller lexicon describing what members do.
const (
	Competition   = "competition"
	Learning      = "learning"
	Creation      = "creation"
	Performance   = "performance"
	Discussion    = "discussion"
	Collaboration = "collaboration"
)

// defaultAffinity applies to every distinct category pair not listed in
// categoryAffinities.
const defaultAffinity = 0.2

// categoryIndicators maps each category to words and phrases that signal it.
var categoryIndicators = map[string][]string{
	Academic: {
		"academic", "study", "studies", "research", "lecture", "lectures", "seminar",
		"scholarship", "tutoring", "tutor", "revision", "exam", "exams", "library",
		"journal", "literature", "philosophy", "history", "mathematics", "maths",
		"math", "law", "linguistics", "classics", "reading", "book club", "books",
	},
	Arts: {
		"art", "arts", "painting", "drawing", "sculpture", "gallery", "theatre",
		"theater", "drama", "acting", "dance", "dancing", "ballet", "photography",
		"film", "cinema", "poetry", "creative writing", "design", "crafts", "pottery",
		"illustration", "animation", "sketching",
	},
	Music: {
		"music", "musical", "musicians", "band", "orchestra", "choir", "singing",
		"song", "songs", "concert", "concerts", "jazz", "rock", "hip hop", "guitar",
		"piano", "violin", "drums", "dj", "a cappella", "opera", "composition",
	},
	Technology: {
		"technology", "tech", "coding", "programming", "software", "hardware",
		"computer", "computers", "computing", "computer science", "ai",
		"artificial intelligence", "machine learning", "robotics", "robot", "robots",
		"hackathon", "web development", "app", "apps", "data science",
		"cybersecurity", "electronics", "engineering",
	},
	Sports: {
		"sport", "sports", "football", "soccer", "basketball", "rugby", "tennis",
		"cricket", "hockey", "swimming", "running", "athletics", "rowing",
		"climbing", "cycling", "volleyball", "badminton", "boxing", "martial arts",
		"karate", "judo", "fitness", "gym", "hiking", "skiing", "netball",
	},
	Gaming: {
		"gaming", "game", "games", "video games", "board games", "board game",
		"chess", "strategy", "esports", "tabletop", "role playing", "rpg",
		"dungeons and dragons", "card games", "puzzle", "puzzles", "console",
	},
	Cultural: {
		"culture", "cultural", "heritage", "international", "tradition",
		"traditions", "traditional", "language exchange", "languages", "diaspora",
		"festival", "festivals", "cuisine", "african", "asian", "caribbean",
		"chinese", "indian", "korean", "japanese", "latin american", "european",
		"arab",
	},
	Religious: {
		"religion", "religious", "faith", "christian", "christianity", "muslim",
		"islamic", "islam", "jewish", "hindu", "sikh", "buddhist", "buddhism",
		"church", "mosque", "prayer", "worship", "bible", "spiritual",
		"spirituality", "meditation",
	},
	Volunteering: {
		"volunteer", "volunteers", "volunteering", "charity", "charitable",
		"fundraising", "fundraiser", "community service", "outreach", "mentoring",
		"donation", "donations", "nonprofit", "humanitarian", "social impact",
	},
	Business: {
		"business", "entrepreneur", "entrepreneurs", "entrepreneurship", "startup",
		"startups", "finance", "investment", "investing", "trading", "economics",
		"marketing", "consulting", "management", "accounting", "careers", "career",
		"banking",
	},
	Science: {
		"science", "sciences", "scientific", "physics", "chemistry", "biology",
		"astronomy", "space", "neuroscience", "psychology", "laboratory", "lab",
		"experiment", "experiments", "genetics", "stem",
	},
	Health: {
		"health", "wellbeing", "well-being", "wellness", "mental health",
		"nutrition", "yoga", "medicine", "medical", "nursing", "first aid",
		"healthcare", "mindfulness",
	},
	Media: {
		"media", "journalism", "newspaper", "magazine", "radio", "podcast",
		"podcasts", "broadcasting", "television", "tv", "blog", "blogging",
		"publishing", "social media", "video production",
	},
	Politics: {
		"politics", "political", "policy", "government", "debate", "debating",
		"model united nations", "united nations", "activism", "activist",
		"campaign", "campaigning", "elections", "democracy", "human rights",
	},
	Environment: {
		"environment", "environmental", "sustainability", "sustainable", "climate",
		"climate change", "green", "conservation", "ecology", "nature", "recycling",
		"gardening", "wildlife", "renewable energy", "outdoors",
	},
	Social: {
		"social", "socials", "friends", "friendship", "party", "parties",
		"meetup", "meetups", "hangout", "nightlife", "pub", "fun", "relaxed",
	},
}

// activityIndicators maps each activity type to words that signal it.
var activityIndicators = map[string][]string{
	Competition: {
		"competition", "competitions", "compete", "competing", "competitive",
		"tournament", "tournaments", "league", "leagues", "championship", "contest",
		"race", "races", "hackathon", "matches",
	},
	Learning: {
		"learn", "learning", "workshop", "workshops", "lecture", "lectures", "talk",
		"talks", "course", "courses", "tutorial", "tutorials", "training", "teach",
		"teaching", "skills", "education",
	},
	Creation: {
		"create", "creating", "creation", "build", "building", "make", "making",
		"design", "designing", "write", "writing", "craft", "develop", "developing",
		"produce", "production", "project", "projects",
	},
	Performance: {
		"perform", "performing", "performance", "performances", "show", "shows",
		"concert", "concerts", "recital", "gig", "gigs", "exhibition", "exhibitions",
		"stage", "showcase",
	},
	Discussion: {
		"discuss", "discussion", "discussions", "debate", "debates", "debating",
		"conversation", "conversations", "forum", "panel", "panels", "dialogue",
	},
	Collaboration: {
		"collaborate", "collaboration", "collaborative", "together", "team",
		"teams", "teamwork", "group", "groups", "community", "cooperative",
		"partnership", "partnerships",
	},
}

// categoryAffinities lists the hand-authored affinities between distinct
// categories. Each pair is stored once; lookups are order-independent.
var categoryAffinities = []struct {
	a, b  string
	score float64
}{
	{Academic, Science, 0.8},
	{Academic, Technology, 0.6},
	{Academic, Politics, 0.5},
	{Academic, Business, 0.5},
	{Academic, Media, 0.4},
	{Academic, Cultural, 0.4},
	{Academic, Health, 0.4},
	{Academic, Environment, 0.4},

	{Arts, Music, 0.8},
	{Arts, Media, 0.7},
	{Arts, Cultural, 0.6},
	{Arts, Gaming, 0.4},
	{Arts, Social, 0.4},

	{Music, Cultural, 0.5},
	{Music, Media, 0.5},
	{Music, Social, 0.5},
	{Music, Religious, 0.4},

	{Technology, Science, 0.7},
	{Technology, Gaming, 0.7},
	{Technology, Business, 0.6},
	{Technology, Media, 0.5},
	{Technology, Environment, 0.3},

	{Sports, Health, 0.8},
	{Sports, Social, 0.5},
	{Sports, Gaming, 0.4},
	{Sports, Environment, 0.4},

	{Gaming, Social, 0.6},

	{Cultural, Religious, 0.6},
	{Cultural, Social, 0.6},
	{Cultural, Politics, 0.4},

	{Religious, Volunteering, 0.6},
	{Religious, Social, 0.4},

	{Volunteering, Environment, 0.6},
	{Volunteering, Health, 0.5},
	{Volunteering, Politics, 0.5},
	{Volunteering, Social, 0.5},

	{Business, Politics, 0.5},
	{Business, Media, 0.4},

	{Science, Health, 0.7},
	{Science, Environment, 0.7},

	{Health, Environment, 0.4},
	{Health, Social, 0.4},

	{Media, Politics, 0.6},
	{Media, Social, 0.4},

	{Politics, Environment, 0.6},
}
