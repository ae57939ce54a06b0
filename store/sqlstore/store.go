// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.mau.fi/ssbot/types"
)

const (
	putGroupQuery = `
		INSERT INTO ssbot_group_list (group_id, display_name, owner_id, member_count, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id) DO UPDATE
			SET display_name=excluded.display_name, owner_id=excluded.owner_id,
			    member_count=excluded.member_count, avatar_url=excluded.avatar_url
	`
	putGroupMemberQuery = `
		INSERT INTO ssbot_group_member (group_id, user_id, nickname, display_name, attr_status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, user_id) DO UPDATE
			SET nickname=excluded.nickname, display_name=excluded.display_name, attr_status=excluded.attr_status
	`
	deleteGroupMembersQuery    = `DELETE FROM ssbot_group_member WHERE group_id=$1`
	deleteAllGroupMembersQuery = `DELETE FROM ssbot_group_member`
	deleteAllGroupsQuery       = `DELETE FROM ssbot_group_list`

	putGroupMessageQuery = `
		INSERT INTO ssbot_group_message (
			message_id, group_owner_id, group_name, member_count, from_user_id, to_user_id,
			sender_attr_status, sender_display_name, sender_nickname, message_type,
			emoticon, text, image_path, video_path, voice_path, link, contact_card, location,
			recalled_message_id, system_notification, time_label, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (message_id) DO NOTHING
	`
	putEnterGroupQuery = `
		INSERT INTO ssbot_enter_group (message_id, group_name, from_user_id, to_user_id, invited_name, time_label)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (message_id) DO NOTHING
	`
	putRenameGroupQuery = `
		INSERT INTO ssbot_rename_group (message_id, group_name, new_name, actor, time_label)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (message_id) DO NOTHING
	`

	getRemarkNameQuery = `SELECT remark FROM ssbot_remark_name WHERE user_id=$1`
	putRemarkNameQuery = `
		INSERT INTO ssbot_remark_name (user_id, remark) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET remark=excluded.remark
	`
	deleteRemarkNameQuery = `DELETE FROM ssbot_remark_name WHERE user_id=$1`
)

// PutGroups upserts the given groups into the group list.
func (c *Container) PutGroups(ctx context.Context, groups []types.GroupRecord) error {
	return c.db.DoTxn(ctx, nil, func(ctx context.Context) error {
		for _, group := range groups {
			_, err := c.db.Exec(ctx, putGroupQuery, group.GroupID, group.DisplayName, group.OwnerID, group.MemberCount, group.AvatarURL)
			if err != nil {
				return fmt.Errorf("failed to insert group %s: %w", group.GroupID, err)
			}
		}
		return nil
	})
}

// PutGroupMembers upserts the given members of a group.
func (c *Container) PutGroupMembers(ctx context.Context, groupID string, members []types.GroupMember) error {
	return c.db.DoTxn(ctx, nil, func(ctx context.Context) error {
		for _, member := range members {
			_, err := c.db.Exec(ctx, putGroupMemberQuery, groupID, member.UserID, member.NickName, member.DisplayName, member.AttrStatus)
			if err != nil {
				return fmt.Errorf("failed to insert member %s of %s: %w", member.UserID, groupID, err)
			}
		}
		return nil
	})
}

// DeleteGroupMembers removes all stored members of a group.
func (c *Container) DeleteGroupMembers(ctx context.Context, groupID string) error {
	_, err := c.db.Exec(ctx, deleteGroupMembersQuery, groupID)
	return err
}

// ResetRoster empties the group list and group member tables in a single transaction.
func (c *Container) ResetRoster(ctx context.Context) error {
	return c.db.DoTxn(ctx, nil, func(ctx context.Context) error {
		if _, err := c.db.Exec(ctx, deleteAllGroupMembersQuery); err != nil {
			return fmt.Errorf("failed to clear group members: %w", err)
		}
		if _, err := c.db.Exec(ctx, deleteAllGroupsQuery); err != nil {
			return fmt.Errorf("failed to clear group list: %w", err)
		}
		return nil
	})
}

// PutGroupMessage appends a message to the group message log. Duplicate message IDs are ignored.
func (c *Container) PutGroupMessage(ctx context.Context, msg *types.GroupMessage) error {
	_, err := c.db.Exec(ctx, putGroupMessageQuery,
		msg.ID, msg.GroupOwnerID, msg.GroupName, msg.MemberCount, msg.FromUserID, msg.ToUserID,
		msg.SenderAttrStatus, msg.SenderDisplayName, msg.SenderNickname, int(msg.Type),
		msg.Emoticon, msg.Text, msg.ImagePath, msg.VideoPath, msg.VoicePath, msg.Link, msg.ContactCard, msg.Location,
		msg.RecalledMessageID, msg.SystemNotification, msg.TimeLabel, msg.Timestamp,
	)
	return err
}

// PutEnterGroup appends a member-joined record.
func (c *Container) PutEnterGroup(ctx context.Context, record *types.EnterGroupRecord) error {
	_, err := c.db.Exec(ctx, putEnterGroupQuery,
		record.MessageID, record.GroupName, record.FromUserID, record.ToUserID, record.InvitedName, record.TimeLabel,
	)
	return err
}

// PutRenameGroup appends a group-renamed record.
func (c *Container) PutRenameGroup(ctx context.Context, record *types.RenameGroupRecord) error {
	_, err := c.db.Exec(ctx, putRenameGroupQuery,
		record.MessageID, record.GroupName, record.NewName, record.Actor, record.TimeLabel,
	)
	return err
}

// GetRemarkName returns the stored remark name of a user, or an empty string if there isn't one.
func (c *Container) GetRemarkName(ctx context.Context, userID string) (remark string, err error) {
	err = c.db.QueryRow(ctx, getRemarkNameQuery, userID).Scan(&remark)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	return
}

// PutRemarkName stores the remark name of a user. An empty remark deletes the row.
func (c *Container) PutRemarkName(ctx context.Context, userID, remark string) (err error) {
	if remark == "" {
		_, err = c.db.Exec(ctx, deleteRemarkNameQuery, userID)
	} else {
		_, err = c.db.Exec(ctx, putRemarkNameQuery, userID, remark)
	}
	return
}
