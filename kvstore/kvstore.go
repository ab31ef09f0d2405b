package kvstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"go.uber.org/zap"
)

// messageTTL is how long cached messages are kept around. The serverlog
// and cleanup cogs only ever report on the last day of activity.
const messageTTL = time.Hour * 24

// Store caches recent messages and guild members in badger so the bot can
// report content that Discord no longer exposes, such as deleted messages.
type Store struct {
	db   *badger.DB
	log  *zap.Logger
	stop chan struct{}
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Truncate = true
	opts.ValueLogLoadingMode = options.FileIO
	opts.NumVersionsToKeep = 1
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open kvstore: %w", err)
	}

	s := &Store{
		db:   db,
		log:  log,
		stop: make(chan struct{}),
	}
	go s.gcLoop()

	return s, nil
}

func (s *Store) gcLoop() {
	gcTimer := time.NewTicker(time.Hour)
	defer gcTimer.Stop()
	for {
		select {
		case <-gcTimer.C:
			if err := s.db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
				s.log.Error("failed to run gc", zap.Error(err))
			}
		case <-s.stop:
			return
		}
	}
}

func (s *Store) Close() error {
	close(s.stop)
	return s.db.Close()
}

func memberKey(gid, uid string) []byte {
	return []byte(fmt.Sprintf("member:%v:%v", gid, uid))
}

func messageKey(gid, cid, mid string) []byte {
	return []byte(fmt.Sprintf("message:%v:%v:%v", gid, cid, mid))
}

func (s *Store) SetMember(m *discordgo.Member) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode member: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memberKey(m.GuildID, m.User.ID), buf.Bytes())
	})
}

func (s *Store) GetMember(gid, uid string) (*discordgo.Member, error) {
	var body []byte
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(memberKey(gid, uid))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	}); err != nil {
		return nil, err
	}

	mem := &discordgo.Member{}
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(mem); err != nil {
		return nil, fmt.Errorf("decode member: %w", err)
	}
	return mem, nil
}

func (s *Store) DeleteMember(gid, uid string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(memberKey(gid, uid))
	})
}

func (s *Store) SetMessage(msg *CachedMessage) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := &badger.Entry{
			Key:       messageKey(msg.Message.GuildID, msg.Message.ChannelID, msg.Message.ID),
			Value:     buf.Bytes(),
			ExpiresAt: uint64(time.Now().Add(messageTTL).Unix()),
		}
		return txn.SetEntry(e)
	})
}

func (s *Store) GetMessage(gid, cid, mid string) (*CachedMessage, error) {
	var body []byte
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(gid, cid, mid))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	}); err != nil {
		return nil, err
	}

	msg := CachedMessage{}
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &msg, nil
}

// GetMessageLog returns cached messages for a channel, oldest first. If uid
// is non-empty only that user's messages are returned.
func (s *Store) GetMessageLog(gid, cid, uid string) ([]*CachedMessage, error) {
	var messages []*CachedMessage
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		// trailing separator so channel c1 does not also match c10
		pfx := fmt.Sprintf("message:%v:%v", gid, cid)
		if cid != "" {
			pfx += ":"
		}
		prefix := []byte(pfx)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			body, err := item.ValueCopy(nil)
			if err != nil {
				s.log.Error("failed to read message", zap.Error(err))
				continue
			}
			msg := CachedMessage{}
			if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&msg); err != nil {
				s.log.Error("failed to decode message", zap.Error(err))
				continue
			}

			if uid == "" || msg.Message.Author.ID == uid {
				messages = append(messages, &msg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortByID(messages)
	return messages, nil
}

// IsNotFound reports whether err means the key was never stored or has
// expired.
func IsNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}
