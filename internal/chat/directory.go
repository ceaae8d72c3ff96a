package chat

import (
	"Shiftline/internal/pkg/consts"
	"sort"
	"strings"
	"sync"
	"time"
)

// RoomRow 房间目录行，chatroom_users 维度的一条成员记录
type RoomRow struct {
	MembershipID   uint64     `json:"chatroomUserId"`
	RoomID         uint64     `json:"chatroomId"`
	UserID         uint64     `json:"userId"`
	RoomName       string     `json:"chatroomName"`
	FriendID       uint64     `json:"friendId,omitempty"`
	FriendName     string     `json:"friendName,omitempty"`
	TargetUserID   uint64     `json:"targetUserId,omitempty"`
	LastMsgContent string     `json:"lastMsgContent,omitempty"`
	LastMsgDate    *time.Time `json:"lastMsgDate,omitempty"`
	UnreadCount    int        `json:"unreadCount"`

	ConnectionStatus string `json:"connectionStatus,omitempty"`
}

// roomNameSuffixes "OO님과의 채팅방" 一族的后缀
var roomNameSuffixes = []string{
	"님과의 채팅방",
	"님와의 채팅방",
	"과의 채팅방",
	"와의 채팅방",
}

// CleanRoomName 从房间名里还原对方昵称
func CleanRoomName(name string) string {
	for _, suffix := range roomNameSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	return strings.TrimSpace(name)
}

// ReceiverID 对端身份解析：多个来源字段取第一个非零值
func (r RoomRow) ReceiverID() uint64 {
	if r.FriendID != 0 {
		return r.FriendID
	}
	return r.TargetUserID
}

// ReceiverName 对端展示名，解析不出时使用兜底占位
func (r RoomRow) ReceiverName() string {
	if r.FriendName != "" {
		return r.FriendName
	}
	if name := CleanRoomName(r.RoomName); name != "" {
		return name
	}
	return consts.DefaultReceiverName
}

// DisplayPreview 最近消息预览，礼物后缀已剥离
func (r RoomRow) DisplayPreview() string {
	return StripGiftContent(r.LastMsgContent)
}

// Directory 房间目录。行集是存储状态，展示排序是派生视图，每次读取时重算。
// 只增改不删：服务端对房间是软删，客户端不做移除对账
type Directory struct {
	mu   sync.RWMutex
	rows []RoomRow
}

func NewDirectory() *Directory {
	return &Directory{}
}

// Reset 以全量列表替换行集
func (d *Directory) Reset(rows []RoomRow) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = append([]RoomRow(nil), rows...)
}

// Loaded 是否已有全量数据
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rows != nil
}

// Apply 就地打补丁：已存在的行做浅合并(拉取到的字段覆盖，零值保留原值)，
// 未知的 membershipId 则前插新行
func (d *Directory) Apply(updated RoomRow) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, row := range d.rows {
		if row.MembershipID == updated.MembershipID {
			d.rows[i] = mergeRow(row, updated)
			return
		}
	}
	d.rows = append([]RoomRow{updated}, d.rows...)
}

// Rows 排序后的展示视图：按最近消息时间降序，无时间戳的排最旧
func (d *Directory) Rows() []RoomRow {
	d.mu.RLock()
	rows := append([]RoomRow(nil), d.rows...)
	d.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].LastMsgDate, rows[j].LastMsgDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return rows
}

func mergeRow(old, updated RoomRow) RoomRow {
	merged := old
	if updated.RoomID != 0 {
		merged.RoomID = updated.RoomID
	}
	if updated.UserID != 0 {
		merged.UserID = updated.UserID
	}
	if updated.RoomName != "" {
		merged.RoomName = updated.RoomName
	}
	if updated.FriendID != 0 {
		merged.FriendID = updated.FriendID
	}
	if updated.FriendName != "" {
		merged.FriendName = updated.FriendName
	}
	if updated.TargetUserID != 0 {
		merged.TargetUserID = updated.TargetUserID
	}
	if updated.LastMsgContent != "" {
		merged.LastMsgContent = updated.LastMsgContent
	}
	if updated.LastMsgDate != nil {
		merged.LastMsgDate = updated.LastMsgDate
	}
	if updated.ConnectionStatus != "" {
		merged.ConnectionStatus = updated.ConnectionStatus
	}
	merged.UnreadCount = updated.UnreadCount
	return merged
}
