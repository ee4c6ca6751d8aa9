package usecase

import "sort"

// collectionScopes maps logical document-type tokens to the graph-store
// collections that hold their chunks. The table is static: collections are
// provisioned out of band by the ingestion tooling.
var collectionScopes = map[string][]string{
	"constitution": {"constitution-golden-source"},
	"bns":          {"bns-golden-source"},
	"ipc":          {"ipc-legacy-source"},
	"cpc":          {"cpc-golden-source"},
	"crpc":         {"crpc-golden-source"},
}

// ResolveScope expands document-type tokens into collection ids. An empty
// scope means "search everything". Unknown tokens contribute nothing;
// duplicates collapse. The result is sorted only to keep output stable;
// order carries no meaning.
func ResolveScope(scopeTokens []string) []string {
	seen := make(map[string]bool)
	if len(scopeTokens) == 0 {
		for _, ids := range collectionScopes {
			for _, id := range ids {
				seen[id] = true
			}
		}
	} else {
		for _, token := range scopeTokens {
			for _, id := range collectionScopes[token] {
				seen[id] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
