package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"newsdesk/internal/client"
	"newsdesk/internal/model"
	"newsdesk/internal/present"

	"github.com/spf13/cobra"
)

var (
	listQuery    string
	listCategory string
	listFallback bool

	postInput model.Input
	postImage string
)

func newClient(opts ...client.Option) (*client.Client, error) {
	return client.New(cfg.APIURL, opts...)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid article id %q", arg)
	}
	return id, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles through the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []client.Option
		if listFallback {
			opts = append(opts, client.WithFallback(client.DefaultFallback()))
		}
		c, err := newClient(opts...)
		if err != nil {
			return err
		}

		articles, err := c.List(cmd.Context(), model.ListFilter{Query: listQuery, Category: listCategory})
		if err != nil {
			return err
		}
		return printArticles(os.Stdout, articles, time.Now())
	},
}

func printArticles(out io.Writer, articles []model.Article, now time.Time) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tAUTHOR\tPUBLISHED\tREAD")
	for _, a := range articles {
		card := present.NewCard(a, nil, now)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d min\n",
			card.ID, card.Title, card.Category, card.Author, card.Published, card.ReadTime)
	}
	return tw.Flush()
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}

		article, err := c.Get(cmd.Context(), id)
		if client.IsNotFound(err) {
			return fmt.Errorf("article %d not found", id)
		} else if err != nil {
			return err
		}

		base, _ := url.Parse(c.BaseURL())
		card := present.NewCard(*article, base, time.Now())
		fmt.Printf("%s\n%s · %s · %s · %d min read\n", card.Title, card.Category, card.Author, card.Published, card.ReadTime)
		if card.ImageURL != "" {
			fmt.Printf("Image: %s\n", card.ImageURL)
		}
		fmt.Printf("\n%s\n\n%s\n", card.Summary, present.PlainText(article.Body))
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish an article through the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		var img *client.Image
		if postImage != "" {
			f, err := os.Open(postImage)
			if err != nil {
				return err
			}
			defer f.Close()
			img = &client.Image{Filename: filepath.Base(postImage), Reader: f}
		}

		article, err := c.Create(cmd.Context(), postInput, img)
		if err != nil {
			return err
		}
		fmt.Println(article.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an article and its image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.Delete(cmd.Context(), id); err != nil {
			if client.IsNotFound(err) {
				return fmt.Errorf("article %d not found", id)
			}
			return err
		}
		fmt.Printf("Deleted article %d\n", id)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		categories, err := c.Categories(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range categories {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only articles whose title or summary contains this text")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Only articles in this category")
	listCmd.Flags().BoolVar(&listFallback, "fallback", false, "Show placeholder articles if the API cannot be reached")

	postCmd.Flags().StringVar(&postInput.Title, "title", "", "Article title")
	postCmd.Flags().StringVar(&postInput.Summary, "summary", "", "Short summary")
	postCmd.Flags().StringVar(&postInput.Body, "content", "", "Article body (HTML)")
	postCmd.Flags().StringVar(&postInput.Category, "category", "", "Category")
	postCmd.Flags().StringVar(&postInput.Author, "author", "", "Author")
	postCmd.Flags().StringVar(&postImage, "image", "", "Path of an image to upload")
	postCmd.MarkFlagRequired("content")
}
