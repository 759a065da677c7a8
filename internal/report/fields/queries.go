package fields

// Query identifies one read-only git invocation used to fill fields.
type Query int

// Supported queries.
const (
	QueryDescribe Query = iota + 1
	QueryBranch
	QueryStatus
	QueryRemoteURL
	QueryLastTag
	QueryMessage
	QueryCommitTime
)

var orderedQueries = []Query{QueryDescribe, QueryBranch, QueryStatus, QueryRemoteURL, QueryLastTag, QueryMessage, QueryCommitTime}

// queriesByField maps each field to the git queries it depends on. Fields absent from the table need none.
var queriesByField = map[Field][]Query{
	Description: {QueryDescribe},
	Branch:      {QueryBranch},
	Status:      {QueryStatus},
	StatusLines: {QueryStatus},
	URL:         {QueryRemoteURL},
	Name:        {QueryRemoteURL},
	LastTag:     {QueryLastTag},
	Message:     {QueryMessage},
	Time:        {QueryCommitTime},
}

// RequiredQueries returns the distinct queries needed for requestedFields in a stable execution order.
func RequiredQueries(requestedFields Set) []Query {
	neededQueries := make(map[Query]struct{})
	for requestedField := range requestedFields {
		for _, query := range queriesByField[requestedField] {
			neededQueries[query] = struct{}{}
		}
	}

	requiredQueries := make([]Query, 0, len(neededQueries))
	for _, query := range orderedQueries {
		if _, needed := neededQueries[query]; needed {
			requiredQueries = append(requiredQueries, query)
		}
	}
	return requiredQueries
}
