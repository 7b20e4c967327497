package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"friendnet/config"
	"friendnet/internal/model"
	dbPkg "friendnet/pkg/db"
	"friendnet/pkg/password"
)

// Seeds the database with a small synthetic social graph for local
// development. Deterministic: the same invocation produces the same
// graph.

var cities = []string{"Hanoi", "Saigon", "Hue", "Da Nang", "Can Tho"}

var interestPool = []string{
	"photography", "hiking", "cooking", "cycling", "chess",
	"guitar", "running", "painting", "gaming", "gardening",
}

var groupSpecs = []struct {
	name   string
	topics []string
}{
	{"Weekend Hikers", []string{"hiking", "running"}},
	{"Street Photography", []string{"photography", "painting"}},
	{"Home Cooks", []string{"cooking", "gardening"}},
	{"Board Game Nights", []string{"chess", "gaming"}},
}

func main() {
	cfg := config.LoadConfig()
	if _, err := dbPkg.InitDB(cfg.Database); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer dbPkg.CloseDB()

	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.FriendRequest{},
		&model.Dismissal{},
		&model.Group{},
		&model.Membership{},
		&model.Post{},
		&model.PostLike{},
	); err != nil {
		log.Fatalf("auto migration failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	orm := dbPkg.GetDB()

	hash, err := password.Hash("password123")
	if err != nil {
		log.Fatalf("hash failed: %v", err)
	}

	const userCount = 40
	users := make([]*model.User, 0, userCount)
	for i := 1; i <= userCount; i++ {
		interests := pick(rng, interestPool, 2+rng.Intn(3))
		u := &model.User{
			Name:         fmt.Sprintf("User %02d", i),
			Email:        fmt.Sprintf("user%02d@example.com", i),
			PasswordHash: hash,
			City:         cities[rng.Intn(len(cities))],
			Headline:     fmt.Sprintf("Enjoys %s", interests[0]),
			Interests:    interests,
			LastActive:   time.Now(),
		}
		if err := orm.Create(u).Error; err != nil {
			log.Fatalf("create user: %v", err)
		}
		users = append(users, u)
	}
	fmt.Printf("created %d users\n", len(users))

	// Random friendships, both directions per pair.
	friendships := 0
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			if rng.Float64() > 0.12 {
				continue
			}
			now := time.Now()
			pair := []*model.Friendship{
				{UserID: users[i].ID, FriendID: users[j].ID, CreatedAt: now},
				{UserID: users[j].ID, FriendID: users[i].ID, CreatedAt: now},
			}
			if err := orm.Create(&pair).Error; err != nil {
				log.Fatalf("create friendship: %v", err)
			}
			friendships++
		}
	}
	fmt.Printf("created %d friendships\n", friendships)

	// A handful of pending requests between strangers.
	requests := 0
	for attempts := 0; requests < 10 && attempts < 200; attempts++ {
		a := users[rng.Intn(len(users))]
		b := users[rng.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		req := &model.FriendRequest{
			SenderID: a.ID,
			TargetID: b.ID,
			Message:  "Hey, let's connect!",
		}
		if err := orm.Create(req).Error; err != nil {
			continue
		}
		requests++
	}
	fmt.Printf("created %d friend requests\n", requests)

	for _, spec := range groupSpecs {
		owner := users[rng.Intn(len(users))]
		g := &model.Group{
			Name:        spec.name,
			Description: fmt.Sprintf("A community for %s", spec.topics[0]),
			Topics:      spec.topics,
			CreatorID:   owner.ID,
		}
		if err := orm.Create(g).Error; err != nil {
			log.Fatalf("create group: %v", err)
		}
		memberships := []*model.Membership{{UserID: owner.ID, GroupID: g.ID, Role: model.RoleOwner}}
		for _, u := range pick(rng, userIDs(users), 5+rng.Intn(8)) {
			if u == owner.ID {
				continue
			}
			memberships = append(memberships, &model.Membership{UserID: u, GroupID: g.ID, Role: model.RoleMember})
		}
		if err := orm.Create(&memberships).Error; err != nil {
			log.Fatalf("create memberships: %v", err)
		}
	}
	fmt.Printf("created %d groups\n", len(groupSpecs))

	// Posts with hashtag topics, then random likes.
	posts := make([]*model.Post, 0, 60)
	for i := 0; i < 60; i++ {
		author := users[rng.Intn(len(users))]
		topic := interestPool[rng.Intn(len(interestPool))]
		p := &model.Post{
			AuthorID:   author.ID,
			Content:    fmt.Sprintf("Thoughts on #%s today", topic),
			Topics:     []string{topic},
			Visibility: model.VisibilityFriends,
			CreatedAt:  time.Now().Add(-time.Duration(rng.Intn(96)) * time.Hour),
		}
		if err := orm.Create(p).Error; err != nil {
			log.Fatalf("create post: %v", err)
		}
		posts = append(posts, p)
	}
	likes := 0
	for _, p := range posts {
		for _, u := range pick(rng, userIDs(users), rng.Intn(6)) {
			if u == p.AuthorID {
				continue
			}
			if err := orm.Create(&model.PostLike{UserID: u, PostID: p.ID}).Error; err != nil {
				continue
			}
			likes++
		}
	}
	fmt.Printf("created %d posts, %d likes\n", len(posts), likes)
	fmt.Println("seed completed")
}

func pick[T any](rng *rand.Rand, pool []T, n int) []T {
	idx := rng.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]T, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func userIDs(users []*model.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
