package kvstore

import (
	"io"
	"net/http"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// CachedMessage is a gateway message plus downloaded attachment bytes, so
// deleted attachments can be reposted to log channels.
type CachedMessage struct {
	Message     *discordgo.Message
	Attachments []*Attachment
}

type Attachment struct {
	Filename string
	Size     int
	Data     []byte
}

// NewCachedMessage downloads the message's attachments, skipping any that
// exceed maxSize bytes.
func NewCachedMessage(msg *discordgo.Message, maxSize int) *CachedMessage {
	m := &CachedMessage{
		Message:     msg,
		Attachments: []*Attachment{},
	}

	for _, a := range msg.Attachments {
		if a.Size > maxSize {
			continue
		}

		data, err := getAttachment(a.URL)
		if err != nil {
			continue
		}

		m.Attachments = append(m.Attachments, &Attachment{
			Filename: a.Filename,
			Size:     a.Size,
			Data:     data,
		})
	}
	return m
}

func getAttachment(url string) ([]byte, error) {
	res, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return io.ReadAll(res.Body)
}

// SortByID orders messages by snowflake, which is creation order.
func SortByID(messages []*CachedMessage) {
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Message.ID < messages[j].Message.ID
	})
}
