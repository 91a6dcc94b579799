// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"cmp"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	discoveryengine "cloud.google.com/go/discoveryengine/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/curioswitch/go-curiostack/server"
	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	"github.com/curioswitch/recipegenie/api"
	"github.com/curioswitch/recipegenie/common/ai"
	"github.com/curioswitch/recipegenie/common/extract"
	"github.com/curioswitch/recipegenie/common/file"
	"github.com/curioswitch/recipegenie/common/image"
	"github.com/curioswitch/recipegenie/common/ocr"
	"github.com/curioswitch/recipegenie/common/photo"
	"github.com/curioswitch/recipegenie/common/query"
	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/common/router"
	"github.com/curioswitch/recipegenie/server/internal/auth"
	"github.com/curioswitch/recipegenie/server/internal/config"
	"github.com/curioswitch/recipegenie/server/internal/connectjson"
	"github.com/curioswitch/recipegenie/server/internal/handler/chat"
	"github.com/curioswitch/recipegenie/server/internal/handler/deleterecipe"
	"github.com/curioswitch/recipegenie/server/internal/handler/extracttext"
	"github.com/curioswitch/recipegenie/server/internal/handler/listrecipes"
	"github.com/curioswitch/recipegenie/server/internal/handler/processphoto"
	"github.com/curioswitch/recipegenie/server/internal/handler/saverecipe"
	"github.com/curioswitch/recipegenie/server/internal/handler/scrapeurl"
	"github.com/curioswitch/recipegenie/server/internal/handler/updaterecipe"
	"github.com/curioswitch/recipegenie/server/internal/i18n"
)

const defaultRequestTimeout = 90 * time.Second

//go:embed conf/*.yaml
var confFiles embed.FS

func main() {
	conf, _ := fs.Sub(confFiles, "conf")
	os.Exit(server.Main(&config.Config{}, conf, setupServer))
}

func setupServer(ctx context.Context, conf *config.Config, s *server.Server) error {
	mux := server.Mux(s)

	provider, err := newProvider(ctx, conf)
	if err != nil {
		return err
	}

	memory := conf.Store.Backend == "memory"
	devAuth := conf.Auth.DevUser != ""

	var fbApp *firebase.App
	if !memory || !devAuth {
		fbApp, err = firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Google.Project})
		if err != nil {
			return fmt.Errorf("main: create firebase app: %w", err)
		}
	}

	var store recipedb.Store
	var photos saverecipe.PhotoUploader
	if memory {
		slog.InfoContext(ctx, "main: using in-memory recipe store")
		store = recipedb.NewMemoryStore()
	} else {
		firestore, err := fbApp.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("main: create firestore client: %w", err)
		}
		defer func() {
			if err := firestore.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close firestore client", "error", err)
			}
		}()

		storage, err := storage.NewGRPCClient(ctx)
		if err != nil {
			return fmt.Errorf("main: create storage client: %w", err)
		}
		defer func() {
			if err := storage.Close(); err != nil {
				slog.ErrorContext(ctx, "main: close storage client", "error", err)
			}
		}()
		publicBucket := cmp.Or(conf.Storage.Bucket, conf.Google.Project+"-public")
		photos = image.NewWriter(file.NewBucket(storage, publicBucket))

		var searcher recipedb.TextSearcher
		if conf.Search.Engine != "" {
			search, err := discoveryengine.NewSearchClient(ctx)
			if err != nil {
				return fmt.Errorf("main: create discovery engine search client: %w", err)
			}
			defer func() {
				if err := search.Close(); err != nil {
					slog.ErrorContext(ctx, "main: close discovery engine search client", "error", err)
				}
			}()
			searcher = recipedb.NewEngineSearcher(search, conf.Search.Engine)
		}

		store = recipedb.NewFirestoreStore(firestore, searcher)
	}

	if devAuth {
		slog.WarnContext(ctx, "main: authenticating all requests as development user", "uid", conf.Auth.DevUser)
		mux.Use(auth.DevMiddleware(conf.Auth.DevUser))
	} else {
		fbAuth, err := fbApp.Auth(ctx)
		if err != nil {
			return fmt.Errorf("main: create firebase auth client: %w", err)
		}
		mux.Use(middleware.Maybe(firebaseauth.NewMiddleware(fbAuth), func(r *http.Request) bool {
			switch {
			case strings.HasPrefix(r.URL.Path, "/internal/"):
				return false
			default:
				return true
			}
		}))
	}

	mux.Use(i18n.Middleware())

	adapter := extract.NewAdapter(provider)
	pages := extract.NewPageFetcher(
		extract.WithUserAgent(conf.Scrape.UserAgent),
		extract.WithReadabilityFallback(conf.Scrape.ReadabilityFallback),
	)
	urls := extract.NewURLExtractor(pages, adapter)

	ocrClient := ocr.NewClient(cmp.Or(conf.OCR.Endpoint, ocr.DefaultEndpoint), conf.OCR.APIKey,
		ocr.WithTimeout(cmp.Or(conf.OCR.Timeout, ocr.DefaultTimeout)))
	photoExtractor := photo.NewExtractor(ocrClient, adapter, ocr.Options{
		Language:          cmp.Or(conf.OCR.Language, ocr.DefaultOptions.Language),
		DetectOrientation: true,
		Engine:            cmp.Or(conf.OCR.Engine, ocr.DefaultOptions.Engine),
	})

	turns := router.New(urls, adapter, query.NewResolver(provider), store, provider, router.WithDebug(conf.Chat.Debug))

	timeout := cmp.Or(conf.Chat.Timeout, defaultRequestTimeout)
	connectjson.Handle(mux, api.ChatProcedure, chat.NewHandler(turns, timeout).Chat)
	connectjson.Handle(mux, api.ScrapeURLProcedure, scrapeurl.NewHandler(urls, timeout).ScrapeURL)
	connectjson.Handle(mux, api.ExtractTextProcedure, extracttext.NewHandler(adapter, timeout).ExtractText)
	connectjson.Handle(mux, api.SaveRecipeProcedure, saverecipe.NewHandler(store, photos).SaveRecipe)
	connectjson.Handle(mux, api.UpdateRecipeProcedure, updaterecipe.NewHandler(store).UpdateRecipe)
	connectjson.Handle(mux, api.DeleteRecipeProcedure, deleterecipe.NewHandler(store).DeleteRecipe)
	connectjson.Handle(mux, api.ListRecipesProcedure, listrecipes.NewHandler(turns).ListRecipes)
	mux.Handle(api.ProcessPhotoPath, processphoto.NewHandler(photoExtractor, timeout))

	if err := server.Start(ctx, s); err != nil {
		return fmt.Errorf("main: start server: %w", err)
	}
	return nil
}

func newProvider(ctx context.Context, conf *config.Config) (ai.Provider, error) {
	models := ai.Models{
		Chat:    conf.AI.ChatModel,
		Extract: conf.AI.ExtractModel,
		Query:   conf.AI.QueryModel,
	}

	switch conf.AI.Provider {
	case "", "openai":
		oai := openai.NewClient()
		return ai.NewOpenAI(&oai, models), nil
	case "gemini":
		genAI, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			Project: conf.Google.Project,
		})
		if err != nil {
			return nil, fmt.Errorf("main: create genai client: %w", err)
		}
		return ai.NewGemini(genAI, models), nil
	default:
		return nil, fmt.Errorf("main: unknown ai provider %q", conf.AI.Provider)
	}
}
