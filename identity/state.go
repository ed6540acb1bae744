//go:generate go run github.com/abice/go-enum -f=$GOFILE --marshal --names
package identity

// State of a resolution attempt, each state is reached only after the previous one succeeded ENUM(
// init // nothing was resolved yet
// meta_resolved // meta TXT record was resolved and parsed
// schema_fetched // schemas document was fetched and matched its pin
// manifest_fetched // manifest document was fetched and matched its pin
// record_resolved // TXT record of the identity type was resolved and parsed
// record_validated // record passed the schema rules
// key_fetched // public key was fetched and matched its pin
// ready // identity can be used
// )
type State int
