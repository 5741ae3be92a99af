package mysql

import (
	"database/sql"
	"microblog-backend/internal/model"
	"microblog-backend/internal/util"

	"go.uber.org/zap"
)

// tweetRepository 实现了 TweetRepository 接口
type tweetRepository struct {
	db *sql.DB
}

// NewTweetRepository 创建一个新的 tweetRepository 实例
func NewTweetRepository(db *sql.DB) *tweetRepository {
	return &tweetRepository{db}
}

const tweetSelect = `
        SELECT t.id, t.author_id, t.content, t.posted, t.deleted, t.in_reply_to, t.repost_of,
               u.id, u.username, u.email, u.first_name, u.last_name, u.deleted
        FROM tweets t
        JOIN users u ON t.author_id = u.id`

func scanTweet(row interface{ Scan(...interface{}) error }) (*model.Tweet, error) {
	var tweet model.Tweet
	var author model.User
	var content sql.NullString
	err := row.Scan(
		&tweet.ID, &tweet.AuthorID, &content, &tweet.Posted, &tweet.Deleted,
		&tweet.InReplyToID, &tweet.RepostOfID,
		&author.ID, &author.Username, &author.Email, &author.FirstName, &author.LastName, &author.Deleted,
	)
	if err != nil {
		return nil, err
	}
	tweet.Content = content.String
	tweet.Author = &author
	return &tweet, nil
}

// Create 创建推文。in_reply_to / repost_of 在创建时一次性写入，之后不再变更
func (r *tweetRepository) Create(tweet *model.Tweet) error {
	var content interface{}
	if tweet.Content != "" {
		content = tweet.Content
	}
	query := `INSERT INTO tweets (author_id, content, posted, deleted, in_reply_to, repost_of)
              VALUES (?, ?, NOW(), FALSE, ?, ?)`
	result, err := r.db.Exec(query, tweet.AuthorID, content, tweet.InReplyToID, tweet.RepostOfID)
	if err != nil {
		util.Logger.Error("创建推文失败", zap.Error(err), zap.Int("author_id", tweet.AuthorID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新推文ID失败", zap.Error(err))
		return err
	}
	tweet.ID = int(id)

	// 回读 posted 时间戳，保持与数据库一致
	err = r.db.QueryRow(`SELECT posted FROM tweets WHERE id = ?`, tweet.ID).Scan(&tweet.Posted)
	if err != nil {
		return err
	}

	util.Logger.Info("推文创建成功", zap.Int("tweet_id", tweet.ID))
	return nil
}

// CreateWithEntities 在同一事务中创建推文并写入标签与提及关联。
// 任何一步失败整体回滚，不会留下缺少实体关联的推文行
func (r *tweetRepository) CreateWithEntities(tweet *model.Tweet, hashtagIDs, mentionUserIDs []int) error {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	var content interface{}
	if tweet.Content != "" {
		content = tweet.Content
	}
	result, err := tx.Exec(`INSERT INTO tweets (author_id, content, posted, deleted, in_reply_to, repost_of)
              VALUES (?, ?, NOW(), FALSE, ?, ?)`, tweet.AuthorID, content, tweet.InReplyToID, tweet.RepostOfID)
	if err != nil {
		util.Logger.Error("创建推文失败", zap.Error(err), zap.Int("author_id", tweet.AuthorID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新推文ID失败", zap.Error(err))
		return err
	}
	tweet.ID = int(id)

	for _, hashtagID := range hashtagIDs {
		_, err := tx.Exec(`INSERT IGNORE INTO tweet_hashtags (tweet_id, hashtag_id) VALUES (?, ?)`,
			tweet.ID, hashtagID)
		if err != nil {
			util.Logger.Error("关联标签失败", zap.Error(err),
				zap.Int("tweet_id", tweet.ID), zap.Int("hashtag_id", hashtagID))
			return err
		}
	}

	// 提及只增不删，推文删除后依然保留
	for _, userID := range mentionUserIDs {
		_, err := tx.Exec(`INSERT IGNORE INTO mentions (user_id, tweet_id) VALUES (?, ?)`,
			userID, tweet.ID)
		if err != nil {
			util.Logger.Error("记录提及失败", zap.Error(err),
				zap.Int("user_id", userID), zap.Int("tweet_id", tweet.ID))
			return err
		}
	}

	// 回读 posted 时间戳，保持与数据库一致
	if err := tx.QueryRow(`SELECT posted FROM tweets WHERE id = ?`, tweet.ID).Scan(&tweet.Posted); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err), zap.Int("tweet_id", tweet.ID))
		return err
	}

	util.Logger.Info("推文创建成功",
		zap.Int("tweet_id", tweet.ID),
		zap.Int("hashtag_count", len(hashtagIDs)),
		zap.Int("mention_count", len(mentionUserIDs)))
	return nil
}

// FindByID 通过ID查找推文（包含已删除的），用于线程遍历
func (r *tweetRepository) FindByID(id int) (*model.Tweet, error) {
	tweet, err := scanTweet(r.db.QueryRow(tweetSelect+` WHERE t.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return tweet, nil
}

// FindActiveByID 通过ID查找未删除的推文
func (r *tweetRepository) FindActiveByID(id int) (*model.Tweet, error) {
	tweet, err := scanTweet(r.db.QueryRow(tweetSelect+` WHERE t.id = ? AND t.deleted = FALSE`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return tweet, nil
}

// MarkDeleted 软删除推文，关联边保留
func (r *tweetRepository) MarkDeleted(id int) error {
	_, err := r.db.Exec(`UPDATE tweets SET deleted = TRUE WHERE id = ?`, id)
	if err != nil {
		util.Logger.Error("删除推文失败", zap.Error(err), zap.Int("tweet_id", id))
		return err
	}
	util.Logger.Info("推文已删除", zap.Int("tweet_id", id))
	return nil
}

// FindAllActive 获取所有未删除的推文，按时间倒序
func (r *tweetRepository) FindAllActive() ([]*model.Tweet, error) {
	return r.queryTweets(tweetSelect + ` WHERE t.deleted = FALSE ORDER BY t.posted DESC`)
}

// FindActiveByAuthor 获取用户的未删除推文，按时间倒序
func (r *tweetRepository) FindActiveByAuthor(userID int) ([]*model.Tweet, error) {
	return r.queryTweets(tweetSelect+` WHERE t.author_id = ? AND t.deleted = FALSE ORDER BY t.posted DESC`, userID)
}

// FindReplies 获取直接回复（包含已删除的，由服务层过滤）
func (r *tweetRepository) FindReplies(tweetID int) ([]*model.Tweet, error) {
	return r.queryTweets(tweetSelect+` WHERE t.in_reply_to = ? ORDER BY t.posted ASC`, tweetID)
}

// FindReposts 获取直接转推（包含已删除的，由服务层过滤）
func (r *tweetRepository) FindReposts(tweetID int) ([]*model.Tweet, error) {
	return r.queryTweets(tweetSelect+` WHERE t.repost_of = ? ORDER BY t.posted ASC`, tweetID)
}

// CreateLike 点赞。重复点赞直接忽略，保证操作幂等
func (r *tweetRepository) CreateLike(userID, tweetID int) error {
	query := `INSERT IGNORE INTO likes (user_id, tweet_id, created_at) VALUES (?, ?, NOW())`
	_, err := r.db.Exec(query, userID, tweetID)
	if err != nil {
		util.Logger.Error("点赞失败", zap.Error(err), zap.Int("user_id", userID), zap.Int("tweet_id", tweetID))
	}
	return err
}

// FindLikers 获取点赞用户（未删除的）
func (r *tweetRepository) FindLikers(tweetID int) ([]*model.User, error) {
	query := `
        SELECT ` + prefixedUserColumns("u") + `
        FROM users u
        JOIN likes l ON u.id = l.user_id
        WHERE l.tweet_id = ? AND u.deleted = FALSE
        ORDER BY l.created_at DESC`
	rows, err := r.db.Query(query, tweetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindMentionedUsers 获取推文中提及的用户（未删除的）
func (r *tweetRepository) FindMentionedUsers(tweetID int) ([]*model.User, error) {
	query := `
        SELECT ` + prefixedUserColumns("u") + `
        FROM users u
        JOIN mentions m ON u.id = m.user_id
        WHERE m.tweet_id = ? AND u.deleted = FALSE`
	rows, err := r.db.Query(query, tweetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindMentioningTweets 获取提及某用户的未删除推文，按时间倒序
func (r *tweetRepository) FindMentioningTweets(userID int) ([]*model.Tweet, error) {
	query := tweetSelect + `
        JOIN mentions m ON t.id = m.tweet_id
        WHERE m.user_id = ? AND t.deleted = FALSE
        ORDER BY t.posted DESC`
	return r.queryTweets(query, userID)
}

// FindHashtags 获取推文的标签列表
func (r *tweetRepository) FindHashtags(tweetID int) ([]*model.Hashtag, error) {
	query := `
        SELECT h.id, h.label, h.first_used, h.last_used
        FROM hashtags h
        JOIN tweet_hashtags th ON h.id = th.hashtag_id
        WHERE th.tweet_id = ?`
	rows, err := r.db.Query(query, tweetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*model.Hashtag
	for rows.Next() {
		var tag model.Hashtag
		if err := rows.Scan(&tag.ID, &tag.Label, &tag.FirstUsed, &tag.LastUsed); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

// FindActiveByHashtag 获取带某标签的未删除推文，按时间倒序
func (r *tweetRepository) FindActiveByHashtag(hashtagID int) ([]*model.Tweet, error) {
	query := tweetSelect + `
        JOIN tweet_hashtags th ON t.id = th.tweet_id
        WHERE th.hashtag_id = ? AND t.deleted = FALSE
        ORDER BY t.posted DESC`
	return r.queryTweets(query, hashtagID)
}

func (r *tweetRepository) queryTweets(query string, args ...interface{}) ([]*model.Tweet, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tweets []*model.Tweet
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, tweet)
	}
	return tweets, rows.Err()
}
