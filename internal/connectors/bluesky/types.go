package bluesky

// Wire types for the subset of ATProto XRPC responses the client consumes.
// Unknown fields are ignored.

type sessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}

type authorFeedResponse struct {
	Feed   []feedItem `json:"feed"`
	Cursor string     `json:"cursor"`
}

type feedItem struct {
	Post   feedPost    `json:"post"`
	Reason *feedReason `json:"reason"`
}

type feedReason struct {
	Type string `json:"$type"`
}

type feedPost struct {
	URI    string     `json:"uri"`
	CID    string     `json:"cid"`
	Author feedAuthor `json:"author"`
	Record postRecord `json:"record"`
	Embed  *postEmbed `json:"embed"`
}

type feedAuthor struct {
	DID    string `json:"did"`
	Handle string `json:"handle"`
}

type postRecord struct {
	Text      string     `json:"text"`
	CreatedAt string     `json:"createdAt"`
	Reply     *postReply `json:"reply"`
}

type postReply struct {
	Parent postRef `json:"parent"`
	Root   postRef `json:"root"`
}

type postRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

type postEmbed struct {
	Type     string         `json:"$type"`
	Images   []embedImage   `json:"images"`
	External *embedExternal `json:"external"`
}

type embedImage struct {
	Fullsize string `json:"fullsize"`
	Alt      string `json:"alt"`
}

type embedExternal struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type apiErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
