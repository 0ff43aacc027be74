// Command seed populates a development database with demo content.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"campusbridge/internal/config"
	"campusbridge/internal/database"
	"campusbridge/internal/middleware"
	"campusbridge/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numSchools := flag.Int("schools", defaults.NumSchools, "Number of schools to submit")
	numMajors := flag.Int("majors", defaults.NumMajors, "Number of majors to submit")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	maxReplies := flag.Int("max-replies", defaults.MaxRepliesPerPost, "Maximum replies per post")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	seedValue := flag.Int64("seed", defaults.Seed, "Random seed; the same seed yields the same data")
	printToken := flag.Bool("admin-token", false, "Print a 24h bearer token for the seeded admin")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg, middleware.NewLogger(cfg.Env, os.Stderr))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:          *numUsers,
		NumSchools:        *numSchools,
		NumMajors:         *numMajors,
		NumPosts:          *numPosts,
		MaxRepliesPerPost: *maxReplies,
		ShouldClean:       *shouldClean,
		Seed:              *seedValue,
	})
	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Done: %d users, %d schools, %d majors, %d posts, %d replies, %d likes, %d testimonials",
		sum.Users, sum.Schools, sum.Majors, sum.Posts, sum.Replies, sum.Likes, sum.Testimonials)

	if *printToken {
		tok, err := middleware.SignToken(cfg.JWTSecret, sum.AdminID, true, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to sign admin token: %v", err)
		}
		log.Printf("🔑 Admin token (user %d): %s", sum.AdminID, tok)
	}
}
