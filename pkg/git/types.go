package git

// Config describes the working copy and where commits go.
type Config struct {
	RepoPath    string
	Remote      string
	Branch      string
	AuthorName  string
	AuthorEmail string
}
