package match

import "strings"

// interestSynonyms expands a lowercase user interest into the keywords it
// should match against listing text. Built once at init; synonym edges
// between two interests that are both table keys are kept bidirectional so
// "blockchain" and "web3" (and friends) always expand to each other.
var interestSynonyms = buildSynonymTable(map[string][]string{
	"artificial intelligence": {"ai", "machine learning", "deep learning", "neural", "nlp", "gpt", "llm", "generative", "ml", "tensorflow", "pytorch"},
	"ai":                      {"artificial intelligence", "machine learning", "deep learning", "neural", "nlp", "gpt", "llm", "generative", "ml", "tensorflow", "pytorch"},
	"web development":         {"web", "frontend", "backend", "fullstack", "react", "node", "javascript", "typescript", "html", "css", "nextjs", "vue", "angular"},
	"blockchain":              {"blockchain", "crypto", "web3", "defi", "nft", "ethereum", "solana", "smart contract", "dorahacks", "buidl", "dao"},
	"web3":                    {"blockchain", "crypto", "defi", "nft", "ethereum", "solana", "smart contract", "decentralized", "dorahacks", "buidl", "dao", "dapp"},
	"cybersecurity":           {"security", "hacking", "penetration", "bug bounty", "ctf", "infosec", "ethical hacking", "intigriti", "hackerone"},
	"data science":            {"data", "analytics", "statistics", "visualization", "machine learning", "big data", "kaggle", "pandas", "numpy"},
	"mobile":                  {"mobile", "ios", "android", "react native", "flutter", "swift", "kotlin", "app"},
	"game development":        {"game", "unity", "3d", "unreal", "gaming", "gamedev"},
	"hackathons":              {"hackathon", "hack", "build", "competition", "sprint", "devpost", "mlh", "dorahacks", "taikai", "hackquest", "buidl"},
	"software":                {"software", "engineering", "developer", "programming", "code", "tech", "coding", "algorithm", "api"},
	"design":                  {"design", "ui", "ux", "figma", "product", "creative", "graphics"},
	"fintech":                 {"finance", "banking", "payments", "trading", "financial", "defi"},
	"healthcare":              {"healthcare", "medical", "biotech", "health", "telemedicine"},
	"entrepreneurship":        {"startup", "business", "innovation", "founder", "venture", "pitch"},
	"cloud":                   {"cloud", "aws", "azure", "gcp", "serverless", "devops", "kubernetes", "docker"},
	"coding":                  {"code", "programming", "developer", "software", "hackathon", "algorithm", "python", "javascript"},
	"python":                  {"python", "django", "flask", "pandas", "numpy", "data science", "ml"},
	"open source":             {"open source", "github", "contribution", "oss", "linux", "community"},
})

// buildSynonymTable lowercases and deduplicates all entries, then enforces
// symmetry: whenever key A lists key B as a synonym, key B lists A too.
func buildSynonymTable(entries map[string][]string) map[string][]string {
	table := make(map[string][]string, len(entries))
	for key, synonyms := range entries {
		key = strings.ToLower(strings.TrimSpace(key))
		cleaned := make([]string, 0, len(synonyms))
		for _, s := range synonyms {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" && s != key {
				cleaned = appendUniqueFold(cleaned, s)
			}
		}
		table[key] = cleaned
	}

	for key, synonyms := range table {
		for _, s := range synonyms {
			if _, isKey := table[s]; isKey {
				table[s] = appendUniqueFold(table[s], key)
			}
		}
	}
	return table
}

// ExpandInterests flattens the user's interests plus their synonyms into a
// lowercase keyword set.
func ExpandInterests(interests []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, interest := range interests {
		key := strings.ToLower(strings.TrimSpace(interest))
		if key == "" {
			continue
		}
		set[key] = struct{}{}
		for _, syn := range interestSynonyms[key] {
			set[syn] = struct{}{}
		}
	}
	return set
}

func appendUniqueFold(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}
