package redis

import (
	"context"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) getMemberKey(memberId string) string {
	return "room:member:" + memberId
}

func (r repo) getMemberListKey() string {
	return "room:members"
}

func (r repo) getNamesKey() string {
	return "room:names"
}

func (r repo) SetMember(ctx context.Context, params *room.SetMemberParams) error {
	pipe := r.rc.TxPipeline()

	member := room.Member{
		Username: params.Username,
	}
	pipe.HSet(ctx, r.getMemberKey(params.MemberId), member)
	r.addWithIncrement(ctx, pipe, r.getMemberListKey(), params.MemberId)

	return r.executePipe(ctx, pipe)
}

func (r repo) GetMember(ctx context.Context, memberId string) (room.Member, error) {
	var member room.Member
	if err := r.rc.HGetAll(ctx, r.getMemberKey(memberId)).Scan(&member); err != nil {
		return room.Member{}, err
	}

	if member.Username == "" {
		return room.Member{}, room.ErrMemberNotFound
	}

	return member, nil
}

// GetMemberIds returns member ids in insertion order.
func (r repo) GetMemberIds(ctx context.Context) ([]string, error) {
	return r.rc.ZRange(ctx, r.getMemberListKey(), 0, -1).Result()
}

func (r repo) RemoveMember(ctx context.Context, memberId string) error {
	res, err := r.rc.ZRem(ctx, r.getMemberListKey(), memberId).Result()
	if err != nil {
		return err
	}
	if res == 0 {
		return room.ErrMemberNotFound
	}

	return r.rc.Del(ctx, r.getMemberKey(memberId)).Err()
}

// AcquireName claims a display name for a member. Returns false when the
// name is already held; first-come-wins, atomic via HSETNX.
func (r repo) AcquireName(ctx context.Context, name, memberId string) (bool, error) {
	return r.rc.HSetNX(ctx, r.getNamesKey(), name, memberId).Result()
}

func (r repo) ReleaseName(ctx context.Context, name string) error {
	return r.rc.HDel(ctx, r.getNamesKey(), name).Err()
}
