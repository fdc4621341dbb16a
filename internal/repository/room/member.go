package room

type Member struct {
	Username string `redis:"username"`
}

type SetMemberParams struct {
	MemberId string
	Username string
}
