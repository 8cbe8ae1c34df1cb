package social

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type FollowResponse struct {
	Following bool `json:"following"`
}
